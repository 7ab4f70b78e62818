package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the running daemon to stop the relay",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StopRelay(context.Background()); err != nil {
		return fmt.Errorf("stopping relay: %w", err)
	}
	fmt.Println("Relay stopped")
	return nil
}
