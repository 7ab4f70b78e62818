//go:build !unix

package endpoint

import (
	"fmt"
	"os"
)

func inherited(fd int, name string) (*os.File, error) {
	return nil, fmt.Errorf("%s: inherited descriptor %d: %w", name, fd, ErrUnsupported)
}
