package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate a shell completion script",
	Long: `Generate a shell completion script for srt (zsh when no shell is given).

To load completions in your current shell session:

  source <(srt completion zsh)

Or write to the zsh completions directory:

  srt completion zsh > "${fpath[1]}/_srt"`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := "zsh"
		if len(args) == 1 {
			shell = args[0]
		}
		switch shell {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		default:
			return fmt.Errorf("unsupported shell %q", shell)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
