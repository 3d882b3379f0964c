package migration

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"go.uber.org/zap"
)

// Options define which migrations Runner runs.
type Options struct {
	// Network is the key progress is stored under, usually network magic.
	Network string
	// Reset makes Runner start from the first migration ignoring progress.
	Reset bool
	// From is the number of the first migration to run (if positive),
	// overrides stored progress.
	From int
	// To is the number of the last migration to run (if positive).
	To int
	// DryRun disables progress recording.
	DryRun bool
}

// Summary describes a completed Run.
type Summary struct {
	// Ran contains the numbers of migrations run.
	Ran []int
	// Last is the number of the last completed migration after the run.
	Last int
}

// Runner runs migrations.
type Runner struct {
	migrations []Migration
	resolver   artifact.Resolver
	store      Store
	log        *zap.Logger
	metrics    *Metrics
}

var errNoNetwork = errors.New("no network specified")

// NewRunner creates a Runner for the given migrations. Migrations are
// checked and ordered by number. Artifacts are resolved with r, progress is
// kept in s.
func NewRunner(ms []Migration, r artifact.Resolver, s Store, log *zap.Logger) (*Runner, error) {
	sorted, err := sortMigrations(ms)
	if err != nil {
		return nil, err
	}
	return &Runner{
		migrations: sorted,
		resolver:   r,
		store:      s,
		log:        log,
	}, nil
}

// WithMetrics makes Runner update the given metrics.
func (r *Runner) WithMetrics(m *Metrics) *Runner {
	r.metrics = m
	return r
}

// Migrations returns all migrations known to Runner in order.
func (r *Runner) Migrations() []Migration {
	res := make([]Migration, len(r.migrations))
	copy(res, r.migrations)
	return res
}

// Pending returns migrations that Run would run with the given options.
func (r *Runner) Pending(opts Options) ([]Migration, int, error) {
	if opts.Network == "" {
		return nil, 0, errNoNetwork
	}
	last, err := r.store.LastCompleted(opts.Network)
	if err != nil {
		return nil, 0, fmt.Errorf("can't get migration progress: %w", err)
	}
	var start = last + 1
	if opts.Reset {
		start = 0
	}
	if opts.From > 0 {
		start = opts.From
	}
	var res []Migration
	for _, m := range r.migrations {
		if m.Number < start || (opts.To > 0 && m.Number > opts.To) {
			continue
		}
		res = append(res, m)
	}
	return res, last, nil
}

// Run runs pending migrations with the given deployer. It stops at the first
// failure, migrations completed before it stay recorded.
func (r *Runner) Run(d deployer.Deployer, opts Options) (Summary, error) {
	pending, last, err := r.Pending(opts)
	if err != nil {
		return Summary{}, err
	}
	var sum = Summary{Last: last}
	if len(pending) == 0 {
		r.log.Info("no pending migrations", zap.String("network", opts.Network), zap.Int("last", last))
		return sum, nil
	}
	for _, m := range pending {
		log := r.log.With(zap.Stringer("migration", m))
		arts, err := artifact.ResolveAll(r.resolver, m.Artifacts)
		if err != nil {
			r.migrationDone(opts.Network, err)
			return sum, fmt.Errorf("migration %s: %w", m, err)
		}
		log.Info("running migration", zap.Bool("dry-run", opts.DryRun))
		err = m.Run(d, arts)
		r.migrationDone(opts.Network, err)
		if err != nil {
			return sum, fmt.Errorf("migration %s failed: %w", m, err)
		}
		sum.Ran = append(sum.Ran, m.Number)
		if opts.DryRun {
			continue
		}
		if err := r.store.SetLastCompleted(opts.Network, m.Number); err != nil {
			return sum, fmt.Errorf("can't save migration %s progress: %w", m, err)
		}
		sum.Last = m.Number
		if r.metrics != nil {
			r.metrics.setLastCompleted(opts.Network, m.Number)
		}
		log.Info("migration completed")
	}
	return sum, nil
}

func (r *Runner) migrationDone(network string, err error) {
	if r.metrics != nil {
		r.metrics.migrationDone(network, err)
	}
}
