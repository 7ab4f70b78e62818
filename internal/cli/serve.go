package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/simplert/srt/internal/api"
	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/dashboard"
	"github.com/simplert/srt/internal/ops"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay daemon (gRPC API and dashboard)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fmt.Printf("Config: %s\n", config.FilePath())

	o := ops.New(cfg, relayTunnel)

	if cfg.Server.DashboardPort > 0 {
		dashAddr := fmt.Sprintf(":%d", cfg.Server.DashboardPort)
		dashSrv := dashboard.NewServer(dashAddr, o)
		go func() {
			fmt.Printf("Dashboard on http://localhost%s\n", dashAddr)
			if err := dashSrv.Run(); err != nil {
				slog.Error("dashboard error", "error", err)
			}
		}()
	}

	apiAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.APIPort)
	apiSrv := api.NewServer(o, apiAddr)
	go func() {
		if err := apiSrv.Run(); err != nil {
			slog.Error("gRPC API error", "error", err)
		}
	}()

	if cfg.Relay.Autostart {
		if err := o.StartRelay(cliProgress); err != nil {
			slog.Error("autostart failed", "error", err)
		}
	}

	fmt.Println("Daemon running. Press Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("\nShutting down...")
	apiSrv.Stop()
	if err := o.StopRelay(context.Background()); err != nil {
		slog.Warn("relay did not stop cleanly", "error", err)
	}
	return nil
}
