package deployer

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"go.uber.org/zap"
)

// ChainOptions are Chain deployer settings.
type ChainOptions struct {
	// SkipDeployed makes Chain check whether the contract is already present
	// at the expected address and not send anything if it is.
	SkipDeployed bool
}

// Chain is a Deployer that sends deployment transactions to the network and
// waits for them to be accepted. Deployments are processed one by one, no
// failed deployment is retried.
type Chain struct {
	act     Actor
	mgmt    *management.Contract
	reader  *management.ContractReader
	journal Journal
	log     *zap.Logger
	opts    ChainOptions
	hist    history
}

// NewChain creates a Chain deployer using the given actor for transactions
// and journal for deployment records. Journal can be nil.
func NewChain(act Actor, journal Journal, log *zap.Logger, opts ChainOptions) *Chain {
	return &Chain{
		act:     act,
		mgmt:    management.New(act),
		reader:  management.NewReader(act),
		journal: journal,
		log:     log,
		opts:    opts,
	}
}

// Deploy implements the Deployer interface.
func (c *Chain) Deploy(a *artifact.Artifact, data ...any) error {
	h := a.ExpectedHash(c.act.Sender())
	log := c.log.With(zap.String("contract", a.Name), zap.String("hash", h.StringLE()))

	if c.opts.SkipDeployed {
		cs, err := c.reader.GetContract(h)
		switch {
		case err != nil:
			log.Warn("failed to check for deployed contract, deploying anyway", zap.Error(err))
		case cs != nil:
			log.Info("contract is already deployed, skipping")
			return c.record(Deployment{
				Contract: a.Name,
				Hash:     h,
				Skipped:  true,
			})
		}
	}

	log.Info("deploying contract")
	txHash, vub, err := c.mgmt.Deploy(a.NEF, a.Manifest, deployData(data))
	aer, err := c.act.Wait(txHash, vub, err)
	if err != nil {
		return fmt.Errorf("failed to deploy %s: %w", a, err)
	}
	if aer.VMState != vmstate.Halt {
		return fmt.Errorf("%w: %s, tx %s: %s", ErrExecutionFailed, a, txHash.StringLE(), aer.FaultException)
	}
	log.Info("contract deployed",
		zap.String("tx", txHash.StringLE()),
		zap.Int64("gas", aer.GasConsumed))
	return c.record(Deployment{
		Contract:    a.Name,
		Hash:        h,
		Tx:          txHash,
		GasConsumed: aer.GasConsumed,
	})
}

// Deployments returns all deployments made by this Chain instance.
func (c *Chain) Deployments() []Deployment {
	return c.hist.deployments()
}

func (c *Chain) record(d Deployment) error {
	c.hist.record(d)
	if c.journal == nil {
		return nil
	}
	if err := c.journal.Record(d); err != nil {
		return fmt.Errorf("failed to record %s deployment: %w", d.Contract, err)
	}
	return nil
}
