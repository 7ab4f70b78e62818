package cli

import (
	"fmt"

	"github.com/simplert/srt/internal/ops"
)

// cliProgress prints ProgressEvents to stdout.
func cliProgress(e ops.ProgressEvent) {
	switch e.Status {
	case "running":
		fmt.Printf("  [%d/%d] %s...\n", e.Step, e.Total, e.Label)
	case "completed":
		if e.Message != "" {
			fmt.Printf("  [%d/%d] %s: %s\n", e.Step, e.Total, e.Label, e.Message)
		} else {
			fmt.Printf("  [%d/%d] %s: done\n", e.Step, e.Total, e.Label)
		}
	case "failed":
		fmt.Printf("  [%d/%d] %s: FAILED: %s\n", e.Step, e.Total, e.Label, e.Error)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
