/*
Package migration runs numbered deployment directives (migrations) against a
network, each at most once.

Every migration names the artifacts it needs, they're resolved before the
migration runs, so a migration never starts deploying if some of its
contracts are not compiled. Progress is stored per network in a Store, a
network is identified by its magic number.
*/
package migration

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
)

// ErrInvalidMigration is returned for migration lists that can't be run.
var ErrInvalidMigration = errors.New("invalid migration")

// Migration is a single numbered deployment directive.
type Migration struct {
	// Number defines migration order, it must be positive and unique.
	Number int
	Name   string
	// Artifacts are the names of contracts Run uses, all of them are
	// resolved before Run is called.
	Artifacts []string
	Run       func(d deployer.Deployer, arts artifact.Set) error
}

// String implements the fmt.Stringer interface.
func (m Migration) String() string {
	return fmt.Sprintf("%d_%s", m.Number, m.Name)
}

// sortMigrations checks migrations and returns a sorted copy of them.
func sortMigrations(ms []Migration) ([]Migration, error) {
	res := make([]Migration, len(ms))
	copy(res, ms)
	sort.Slice(res, func(i, j int) bool { return res[i].Number < res[j].Number })
	for i, m := range res {
		switch {
		case m.Number <= 0:
			return nil, fmt.Errorf("%w: %s: non-positive number", ErrInvalidMigration, m)
		case m.Name == "":
			return nil, fmt.Errorf("%w: %d: no name", ErrInvalidMigration, m.Number)
		case m.Run == nil:
			return nil, fmt.Errorf("%w: %s: nothing to run", ErrInvalidMigration, m)
		case i > 0 && res[i-1].Number == m.Number:
			return nil, fmt.Errorf("%w: %s and %s have the same number", ErrInvalidMigration, res[i-1], m)
		}
	}
	return res, nil
}
