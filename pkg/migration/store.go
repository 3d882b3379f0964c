package migration

import (
	"sort"
	"sync"

	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
)

// Store keeps migration progress and deployment records per network.
type Store interface {
	// LastCompleted returns the number of the last completed migration for
	// the network, 0 if there were none.
	LastCompleted(network string) (int, error)
	SetLastCompleted(network string, n int) error
	// PutDeployment saves deployment record replacing any previous record
	// for the same contract.
	PutDeployment(network string, d deployer.Deployment) error
	// Deployments returns network's deployment records sorted by contract name.
	Deployments(network string) ([]deployer.Deployment, error)
	// Networks returns all networks having any data, sorted.
	Networks() ([]string, error)
	Close() error
}

type journal struct {
	store   Store
	network string
}

// Journal returns deployer.Journal saving deployments of the given network
// to the store.
func Journal(s Store, network string) deployer.Journal {
	return journal{store: s, network: network}
}

// Record implements the deployer.Journal interface.
func (j journal) Record(d deployer.Deployment) error {
	return j.store.PutDeployment(j.network, d)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	lock sync.RWMutex
	nets map[string]*memNet
}

type memNet struct {
	last        int
	deployments map[string]deployer.Deployment
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nets: make(map[string]*memNet)}
}

func (s *MemoryStore) getNet(network string) *memNet {
	n, ok := s.nets[network]
	if !ok {
		n = &memNet{deployments: make(map[string]deployer.Deployment)}
		s.nets[network] = n
	}
	return n
}

// LastCompleted implements the Store interface.
func (s *MemoryStore) LastCompleted(network string) (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nets[network]
	if !ok {
		return 0, nil
	}
	return n.last, nil
}

// SetLastCompleted implements the Store interface.
func (s *MemoryStore) SetLastCompleted(network string, n int) error {
	s.lock.Lock()
	s.getNet(network).last = n
	s.lock.Unlock()
	return nil
}

// PutDeployment implements the Store interface.
func (s *MemoryStore) PutDeployment(network string, d deployer.Deployment) error {
	s.lock.Lock()
	s.getNet(network).deployments[d.Contract] = d
	s.lock.Unlock()
	return nil
}

// Deployments implements the Store interface.
func (s *MemoryStore) Deployments(network string) ([]deployer.Deployment, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	n, ok := s.nets[network]
	if !ok {
		return nil, nil
	}
	res := make([]deployer.Deployment, 0, len(n.deployments))
	for _, d := range n.deployments {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Contract < res[j].Contract })
	return res, nil
}

// Networks implements the Store interface.
func (s *MemoryStore) Networks() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]string, 0, len(s.nets))
	for name := range s.nets {
		res = append(res, name)
	}
	sort.Strings(res)
	return res, nil
}

// Close implements the Store interface, it's a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
