package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/neo-migrate/cli/migrate"
	"github.com/nspcc-dev/neo-migrate/migrations"
	"github.com/nspcc-dev/neo-migrate/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "NeoMigrate\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a neo-migrate instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "neo-migrate"
	ctl.Version = config.Version
	ctl.Usage = "Neo N3 smart contract migration tool"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, migrate.NewCommands(migrations.All())...)
	return ctl
}
