package input

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, the controlling terminal
// of the process is used.
var Terminal *term.Terminal

// ReadPassword reads user password with prompt.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	in, out, closeTTY, err := openTTY()
	if err != nil {
		return "", err
	}
	defer closeTTY()
	return readPasswordFrom(in, out, prompt)
}

// readPasswordFrom writes prompt to out and reads a line from in with echo
// disabled, in must be a terminal.
func readPasswordFrom(in *os.File, out io.Writer, prompt string) (string, error) {
	if _, err := io.WriteString(out, prompt); err != nil {
		return "", err
	}
	pass, err := term.ReadPassword(int(in.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	_, err = fmt.Fprintln(out)
	return string(pass), err
}
