//go:build !unix

package tunnel

import (
	"fmt"
	"os"
)

func acquire(fd int, name string) (*os.File, error) {
	if fd < 0 {
		return nil, invalidFD(name, fd)
	}
	return nil, fmt.Errorf("%w: %s: raw descriptors are not supported on this platform", ErrAcquire, name)
}
