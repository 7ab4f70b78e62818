package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/simplert/srt/internal/config"
	"github.com/simplert/srt/internal/ops"
	"github.com/simplert/srt/internal/tunnel"
	"github.com/spf13/cobra"
)

var (
	relayTunFD int
	relayAccFD int
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay in the foreground until a signal or an endpoint failure",
	Long: `Relay opens the endpoints from the config file, or uses descriptors
inherited from the parent process when --tun-fd / --acc-fd are given, and
forwards between them until interrupted or until either endpoint fails.`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().IntVar(&relayTunFD, "tun-fd", -1, "inherited TUN descriptor (overrides config)")
	relayCmd.Flags().IntVar(&relayAccFD, "acc-fd", -1, "inherited accessory descriptor (overrides config)")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if relayTunFD >= 0 {
		cfg.Tun.FD = relayTunFD
	}
	if relayAccFD >= 0 {
		cfg.Accessory.FD = relayAccFD
	}

	o := ops.New(cfg, relayTunnel)
	if err := o.StartRelay(cliProgress); err != nil {
		return fmt.Errorf("starting relay: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var result error
	select {
	case <-sig:
		fmt.Println("\nStopping relay...")
	case <-relayTunnel.Ended():
		result = fmt.Errorf("relay: %w", ops.ErrSessionEnded)
	}

	st := stopRelay(o)
	slog.Info("relay finished",
		"tun_to_acc_bytes", st.TunToAccessory.Bytes,
		"acc_to_tun_bytes", st.AccessoryToTun.Bytes)
	return result
}

// stopRelay stops o and returns the counters of the session it ended. A
// completed stop reaps the session, so they are read first.
func stopRelay(o *ops.Ops) tunnel.Stats {
	st := relayTunnel.Stats()
	if err := o.StopRelay(context.Background()); err != nil {
		slog.Warn("relay did not stop cleanly", "error", err)
	}
	return st
}
