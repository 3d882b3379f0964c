package migrations

import (
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"github.com/nspcc-dev/neo-migrate/pkg/migration"
	"go.uber.org/multierr"
)

const (
	simpleStorage = "SimpleStorage"
	licence       = "Licence"
)

var deployContracts = migration.Migration{
	Number:    2,
	Name:      "deploy_contracts",
	Artifacts: []string{simpleStorage, licence},
	Run:       DeployContracts,
}

// DeployContracts deploys SimpleStorage and then Licence. Both deployments
// are requested whatever the outcome of the first one is, errors are
// reported by the deployer and returned together.
func DeployContracts(d deployer.Deployer, arts artifact.Set) error {
	err := d.Deploy(arts.Get(simpleStorage))
	return multierr.Append(err, d.Deploy(arts.Get(licence)))
}
