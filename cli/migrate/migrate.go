package migrate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-migrate/cli/cmdargs"
	"github.com/nspcc-dev/neo-migrate/cli/flags"
	"github.com/nspcc-dev/neo-migrate/cli/options"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"github.com/nspcc-dev/neo-migrate/pkg/migration"
	"github.com/urfave/cli"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NewCommands returns 'migrate', 'networks' and 'artifacts' commands running
// the given migrations.
func NewCommands(ms []migration.Migration) []cli.Command {
	migrateFlags := []cli.Flag{
		options.ConfigFile,
		options.Network,
		options.Debug,
		cli.BoolFlag{
			Name:  "reset",
			Usage: "run all migrations from the first one ignoring saved progress",
		},
		cli.IntFlag{
			Name:  "from",
			Usage: "number of the first migration to run",
		},
		cli.IntFlag{
			Name:  "to",
			Usage: "number of the last migration to run",
		},
		cli.BoolFlag{
			Name:  "dry-run",
			Usage: "test-invoke deployments without sending transactions or saving progress",
		},
	}
	migrateFlags = append(migrateFlags, options.NetworkOverrides()...)
	return []cli.Command{
		{
			Name:      "migrate",
			Usage:     "Run pending migrations",
			UsageText: "neo-migrate migrate [--config-file file] [--network name] [-r endpoint] [-w wallet | --wallet-config file] [-a address] [--reset] [--from n] [--to n] [--dry-run] [-s timeout] [--debug]",
			Description: `Deploys contracts by running all migrations that were not completed for
   the chosen network yet. Progress is saved after every completed migration,
   so failed run can be resumed. Compiled contracts are taken from the
   ArtifactsPath directory.
`,
			Action: func(ctx *cli.Context) error {
				return runMigrations(ctx, ms)
			},
			Flags: migrateFlags,
		},
		{
			Name:      "networks",
			Usage:     "Show saved migration progress and deployments",
			UsageText: "neo-migrate networks [--config-file file]",
			Action: func(ctx *cli.Context) error {
				return listNetworks(ctx, ms)
			},
			Flags: []cli.Flag{options.ConfigFile},
		},
		{
			Name:      "artifacts",
			Usage:     "List compiled contracts available for deployment",
			UsageText: "neo-migrate artifacts [--config-file file] [--sender address]",
			Action:    listArtifacts,
			Flags: []cli.Flag{
				options.ConfigFile,
				flags.NewAddressFlag("sender", "deployer address to calculate contract hashes for"),
			},
		},
	}
}

func runMigrations(ctx *cli.Context, ms []migration.Migration) (err error) {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	name, netCfg, err := options.GetNetworkConfig(ctx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	acc, wall, err := options.GetAccount(netCfg)
	if wall != nil {
		defer wall.Close()
	}
	if err != nil {
		return cli.NewExitError(fmt.Errorf("can't get deployer account: %w", err), 1)
	}

	gctx, cancel := options.GetTimeoutContext(netCfg.Timeout)
	defer cancel()

	c, act, exitErr := options.GetRPCWithActor(gctx, netCfg.RPCEndpoint, acc)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	magic := act.GetNetwork()
	network := strconv.FormatUint(uint64(magic), 10)
	log = log.With(zap.String("network", name), zap.Stringer("magic", magic))

	store, err := migration.NewBoltDBStore(cfg.ApplicationConfiguration.StatePath)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = cli.NewExitError(closeErr, 1)
		}
	}()

	var metrics *migration.Metrics
	if cfg.ApplicationConfiguration.MetricsFile != "" {
		metrics = migration.NewMetrics()
	}
	runner, err := migration.NewRunner(ms, artifact.NewDirResolver(cfg.ApplicationConfiguration.ArtifactsPath), store, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	runner.WithMetrics(metrics)

	type reporter interface {
		deployer.Deployer
		Deployments() []deployer.Deployment
	}
	var d reporter
	if ctx.Bool("dry-run") {
		d = deployer.NewDryRun(act, log)
	} else {
		journal := metrics.Journal(migration.Journal(store, network), network)
		d = deployer.NewChain(act, journal, log, deployer.ChainOptions{SkipDeployed: netCfg.SkipDeployed})
	}

	sum, runErr := runner.Run(d, migration.Options{
		Network: network,
		Reset:   ctx.Bool("reset"),
		From:    ctx.Int("from"),
		To:      ctx.Int("to"),
		DryRun:  ctx.Bool("dry-run"),
	})
	printSummary(ctx, name, sum, d.Deployments())
	if metrics != nil {
		runErr = multierr.Append(runErr, metrics.WriteToTextfile(cfg.ApplicationConfiguration.MetricsFile))
	}
	if runErr != nil {
		return cli.NewExitError(runErr, 1)
	}
	return nil
}

func printSummary(ctx *cli.Context, network string, sum migration.Summary, ds []deployer.Deployment) {
	w := ctx.App.Writer
	if len(sum.Ran) == 0 && len(ds) == 0 {
		fmt.Fprintf(w, "Network %s is up to date (last migration: %d)\n", network, sum.Last)
		return
	}
	fmt.Fprintf(w, "Network %s: ran %d migration(s), last completed: %d\n", network, len(sum.Ran), sum.Last)
	printDeployments(w, ds)
}

func printDeployments(w io.Writer, ds []deployer.Deployment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range ds {
		var status string
		switch {
		case d.DryRun:
			status = "simulated"
		case d.Skipped:
			status = "skipped"
		default:
			status = "deployed"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s GAS\t%s\n", d.Contract, status,
			d.Hash.StringLE(), fixedn.Fixed8(d.GasConsumed), d.Tx.StringLE())
	}
	_ = tw.Flush()
}

func listNetworks(ctx *cli.Context, ms []migration.Migration) (err error) {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	statePath := cfg.ApplicationConfiguration.StatePath
	if _, err := os.Stat(statePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(ctx.App.Writer, "No migrations were run yet")
			return nil
		}
		return cli.NewExitError(err, 1)
	}
	store, err := migration.NewBoltDBStore(statePath)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = cli.NewExitError(closeErr, 1)
		}
	}()

	nets, err := store.Networks()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var total int
	for _, m := range ms {
		if m.Number > total {
			total = m.Number
		}
	}
	w := ctx.App.Writer
	for _, n := range nets {
		last, err := store.LastCompleted(n)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		ds, err := store.Deployments(n)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintf(w, "%s: last migration %d of %d\n", networkName(n), last, total)
		printDeployments(w, ds)
	}
	return nil
}

// networkName returns a readable name for the store key which is
// a network magic number.
func networkName(key string) string {
	magic, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s (%s)", netmode.Magic(magic), key)
}

func listArtifacts(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	dir := cfg.ApplicationConfiguration.ArtifactsPath
	names, err := artifact.List(dir)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if len(names) == 0 {
		fmt.Fprintf(ctx.App.Writer, "No artifacts found in %s\n", dir)
		return nil
	}
	sender := flags.GetAddress(ctx, "sender")

	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	for _, name := range names {
		a, err := artifact.Read(dir, name)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		_, _ = fmt.Fprintf(tw, "%s\tchecksum: %d\tscript: %d bytes\tmethods: %d", a, a.NEF.Checksum,
			len(a.NEF.Script), len(a.Manifest.ABI.Methods))
		if sender != nil {
			h := a.ExpectedHash(sender.Uint160())
			_, _ = fmt.Fprintf(tw, "\thash: %s (%s)", h.StringLE(), address.Uint160ToString(h))
		}
		_, _ = fmt.Fprintln(tw)
	}
	return tw.Flush()
}
