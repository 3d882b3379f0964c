//go:build !windows

package input

import (
	"fmt"
	"os"
)

// openTTY opens /dev/tty for both prompt and input, so that passwords can be
// read even when stdin or stdout are redirected.
func openTTY() (*os.File, *os.File, func(), error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't open terminal: %w", err)
	}
	return f, f, func() { _ = f.Close() }, nil
}
