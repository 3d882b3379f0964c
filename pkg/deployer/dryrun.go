package deployer

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"go.uber.org/zap"
)

// DryRun is a Deployer that only test-invokes deployments. It builds
// unsigned deployment transactions (which requires successful test
// invocation) and reports their fees, nothing is sent to the network.
type DryRun struct {
	act  Actor
	mgmt *management.Contract
	log  *zap.Logger
	hist history
}

// NewDryRun creates a DryRun deployer using the given actor.
func NewDryRun(act Actor, log *zap.Logger) *DryRun {
	return &DryRun{
		act:  act,
		mgmt: management.New(act),
		log:  log,
	}
}

// Deploy implements the Deployer interface.
func (d *DryRun) Deploy(a *artifact.Artifact, data ...any) error {
	h := a.ExpectedHash(d.act.Sender())
	tx, err := d.mgmt.DeployUnsigned(a.NEF, a.Manifest, deployData(data))
	if err != nil {
		return fmt.Errorf("%s deployment test invocation failed: %w", a, err)
	}
	d.log.Info("contract deployment simulated",
		zap.String("contract", a.Name),
		zap.String("hash", h.StringLE()),
		zap.Int64("sysfee", tx.SystemFee),
		zap.Int64("netfee", tx.NetworkFee))
	d.hist.record(Deployment{
		Contract:    a.Name,
		Hash:        h,
		GasConsumed: tx.SystemFee,
		DryRun:      true,
	})
	return nil
}

// Deployments returns all simulated deployments.
func (d *DryRun) Deployments() []Deployment {
	return d.hist.deployments()
}
