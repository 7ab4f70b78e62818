package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Ask the running daemon to start the relay",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.StartRelay(context.Background())
	for _, e := range resp.Steps {
		cliProgress(e)
	}
	if err != nil {
		return fmt.Errorf("starting relay: %w", err)
	}
	fmt.Printf("Relay started (session %s)\n", resp.Session)
	return nil
}
