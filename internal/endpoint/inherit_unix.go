//go:build unix

package endpoint

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// inherited wraps a duplicate of fd. Closing the result leaves fd open, so
// the same descriptor can back a later session.
func inherited(fd int, name string) (*os.File, error) {
	if fd < 0 {
		return nil, fmt.Errorf("%s: invalid descriptor %d", name, fd)
	}
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: duplicating descriptor %d: %w", name, fd, err)
	}
	unix.CloseOnExec(dup)
	return os.NewFile(uintptr(dup), name), nil
}
