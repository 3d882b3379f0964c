//go:build windows

package input

import "os"

// openTTY returns stdin for input and stderr for prompts.
func openTTY() (*os.File, *os.File, func(), error) {
	return os.Stdin, os.Stderr, func() {}, nil
}
