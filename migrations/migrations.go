// Package migrations contains deployment directives of the project's
// contracts.
package migrations

import (
	"github.com/nspcc-dev/neo-migrate/pkg/migration"
)

// All returns every migration of the project.
func All() []migration.Migration {
	return []migration.Migration{
		deployContracts,
	}
}
