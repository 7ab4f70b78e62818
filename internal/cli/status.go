package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/simplert/srt/internal/api"
	"github.com/simplert/srt/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show relay status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// dialDaemon connects to the gRPC API of `srt serve`.
func dialDaemon() (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.APIPort)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := api.Dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("daemon not reachable at %s (start it with `srt serve`): %w", addr, err)
	}
	return client, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := dialDaemon()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.GetStatus(context.Background())
	if err != nil {
		return fmt.Errorf("getting status: %w", err)
	}

	r := resp.Relay
	fmt.Printf("  Version: %s\n", resp.Version)
	fmt.Printf("  Config:  %s\n", r.ConfigPath)
	fmt.Printf("  State:   %s\n", r.State)
	fmt.Printf("  Running: %v\n", r.Running)
	if r.Error != "" {
		fmt.Printf("  Error:   %s\n", r.Error)
	}

	st := r.Tunnel
	fmt.Println()
	fmt.Println("  Session:")
	fmt.Printf("    ID:       %s\n", orDash(st.Session))
	if !st.Started.IsZero() {
		fmt.Printf("    Uptime:   %s\n", time.Since(st.Started).Round(time.Second))
	}
	fmt.Printf("    tun->acc: %d packets, %d bytes\n", st.TunToAccessory.Packets, st.TunToAccessory.Bytes)
	fmt.Printf("    acc->tun: %d packets, %d bytes\n", st.AccessoryToTun.Packets, st.AccessoryToTun.Bytes)
	return nil
}
