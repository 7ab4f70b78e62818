package cli

import (
	"github.com/simplert/srt/internal/logging"
	"github.com/simplert/srt/internal/tunnel"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	// relayTunnel is the process's only Tunnel, handed in by Execute.
	relayTunnel *tunnel.Tunnel
)

var rootCmd = &cobra.Command{
	Use:   "srt",
	Short: "SimpleRT: relay a TUN interface over an accessory channel",
	Long: `srt forwards raw packets between a TUN interface and an accessory
channel (a USB gadget, character device or socket) so a tethered device can
route its traffic through this host.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// Execute runs the CLI. t is the Tunnel every relay command drives.
func Execute(t *tunnel.Tunnel) error {
	relayTunnel = t
	return rootCmd.Execute()
}
