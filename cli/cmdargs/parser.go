/*
Package cmdargs contains helpers to validate positional command arguments.
*/
package cmdargs

import (
	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}
