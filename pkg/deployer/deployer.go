/*
Package deployer provides deployers, components that submit compiled
contracts to the network and keep track of deployment results.

Migrations only know about the Deployer interface, the choice of
implementation (actually sending transactions with Chain or test-invoking
them with DryRun) is made by the migration runner's user.
*/
package deployer

import (
	"errors"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
)

// ErrExecutionFailed is returned when deployment transaction was accepted to
// the chain, but its execution ended in FAULT state.
var ErrExecutionFailed = errors.New("deployment execution failed")

// Deployer deploys compiled contracts. Deploy sends the given artifact to the
// network passing data (if any) to the contract's _deploy method. Several
// data values are passed as an array. Failures are reported via the returned
// error, successful outcomes are tracked by the Deployer itself.
type Deployer interface {
	Deploy(a *artifact.Artifact, data ...any) error
}

// Actor is the set of actor.Actor methods deployers need.
type Actor interface {
	management.Actor

	Sender() util.Uint160
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Deployment is an outcome of a single contract deployment.
type Deployment struct {
	Contract string       `json:"contract"`
	Hash     util.Uint160 `json:"hash"`
	Tx       util.Uint256 `json:"tx"`
	// GasConsumed is the system fee of the deployment transaction. For
	// dry runs it's the estimated one.
	GasConsumed int64 `json:"gasconsumed"`
	// Skipped is set when contract was found to be already deployed and no
	// transaction was sent.
	Skipped bool `json:"skipped,omitempty"`
	DryRun  bool `json:"dryrun,omitempty"`
}

// Journal accepts successful deployment records.
type Journal interface {
	Record(d Deployment) error
}

// history keeps all deployments made by a deployer in memory.
type history struct {
	lock sync.RWMutex
	list []Deployment
}

func (h *history) record(d Deployment) {
	h.lock.Lock()
	h.list = append(h.list, d)
	h.lock.Unlock()
}

func (h *history) deployments() []Deployment {
	h.lock.RLock()
	defer h.lock.RUnlock()
	res := make([]Deployment, len(h.list))
	copy(res, h.list)
	return res
}

// deployData converts variadic data to a single _deploy argument.
func deployData(data []any) any {
	switch len(data) {
	case 0:
		return nil
	case 1:
		return data[0]
	default:
		return data
	}
}
