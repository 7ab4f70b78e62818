//go:build !linux

package endpoint

import (
	"os"

	"github.com/simplert/srt/internal/config"
)

func openTunDevice(config.TunConfig) (*os.File, error) {
	return nil, ErrUnsupported
}
