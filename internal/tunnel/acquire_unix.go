//go:build unix

package tunnel

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquire clears O_NONBLOCK on fd so reads block until data, EOF or error,
// and returns a close-on-exec duplicate wrapped as a file.
func acquire(fd int, name string) (*os.File, error) {
	if fd < 0 {
		return nil, invalidFD(name, fd)
	}

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading flags of fd %d: %w", ErrAcquire, name, fd, err)
	}
	if flags&unix.O_NONBLOCK != 0 {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags&^unix.O_NONBLOCK); err != nil {
			return nil, fmt.Errorf("%w: %s: clearing O_NONBLOCK on fd %d: %w", ErrAcquire, name, fd, err)
		}
	}

	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: dup fd %d: %w", ErrAcquire, name, fd, err)
	}
	unix.CloseOnExec(dup)
	return os.NewFile(uintptr(dup), name), nil
}
