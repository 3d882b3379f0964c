package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newBoltStoreForTesting(t testing.TB) Store {
	d := t.TempDir()
	testFileName := filepath.Join(d, "sub", "test_bolt_db")
	boltDBStore, err := NewBoltDBStore(testFileName)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, boltDBStore.Close()) })
	return boltDBStore
}

func testStore(t *testing.T, s Store) {
	nets, err := s.Networks()
	require.NoError(t, err)
	require.Empty(t, nets)

	last, err := s.LastCompleted(testNet)
	require.NoError(t, err)
	require.Equal(t, 0, last)
	ds, err := s.Deployments(testNet)
	require.NoError(t, err)
	require.Empty(t, ds)

	require.NoError(t, s.SetLastCompleted(testNet, 2))
	last, err = s.LastCompleted(testNet)
	require.NoError(t, err)
	require.Equal(t, 2, last)

	first := deployer.Deployment{
		Contract:    "SimpleStorage",
		Hash:        util.Uint160{1, 2, 3},
		Tx:          util.Uint256{4, 5, 6},
		GasConsumed: 1000,
	}
	second := deployer.Deployment{
		Contract: "Licence",
		Hash:     util.Uint160{7, 8, 9},
		Skipped:  true,
	}
	require.NoError(t, s.PutDeployment(testNet, first))
	require.NoError(t, s.PutDeployment(testNet, second))
	require.NoError(t, s.PutDeployment("other", first))

	ds, err = s.Deployments(testNet)
	require.NoError(t, err)
	require.Equal(t, []deployer.Deployment{second, first}, ds)

	// Redeployment replaces the record.
	first.Tx = util.Uint256{10}
	require.NoError(t, s.PutDeployment(testNet, first))
	ds, err = s.Deployments(testNet)
	require.NoError(t, err)
	require.Equal(t, []deployer.Deployment{second, first}, ds)

	last, err = s.LastCompleted("other")
	require.NoError(t, err)
	require.Equal(t, 0, last)

	nets, err = s.Networks()
	require.NoError(t, err)
	require.Equal(t, []string{testNet, "other"}, nets)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)
	require.NoError(t, s.Close())
}

func TestBoltDBStore(t *testing.T) {
	testStore(t, newBoltStoreForTesting(t))
}

func TestBoltDBStoreReopen(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "state.db")
	s, err := NewBoltDBStore(fileName)
	require.NoError(t, err)
	require.NoError(t, s.SetLastCompleted(testNet, 5))
	require.NoError(t, s.PutDeployment(testNet, deployer.Deployment{Contract: "Licence"}))
	require.NoError(t, s.Close())

	s, err = NewBoltDBStore(fileName)
	require.NoError(t, err)
	defer s.Close()
	last, err := s.LastCompleted(testNet)
	require.NoError(t, err)
	require.Equal(t, 5, last)
	ds, err := s.Deployments(testNet)
	require.NoError(t, err)
	require.Equal(t, []deployer.Deployment{{Contract: "Licence"}}, ds)
}

func TestBoltDBStoreBadPath(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte{}, 0644))
	_, err := NewBoltDBStore(filepath.Join(f, "state.db"))
	require.Error(t, err)
}

func TestJournal(t *testing.T) {
	s := NewMemoryStore()
	m := NewMetrics()
	j := m.Journal(Journal(s, testNet), testNet)

	require.NoError(t, j.Record(deployer.Deployment{Contract: "A", GasConsumed: 10}))
	require.NoError(t, j.Record(deployer.Deployment{Contract: "B", Skipped: true}))

	ds, err := s.Deployments(testNet)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(m.deployments.WithLabelValues(testNet, "deployed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.deployments.WithLabelValues(testNet, "skipped")))
	require.Equal(t, 10.0, testutil.ToFloat64(m.gasConsumed.WithLabelValues(testNet)))

	var nilMetrics *Metrics
	plain := Journal(s, testNet)
	require.Equal(t, plain, nilMetrics.Journal(plain, testNet))
}

func TestMetricsWriteToTextfile(t *testing.T) {
	m := NewMetrics()
	m.setLastCompleted(testNet, 2)
	f := filepath.Join(t.TempDir(), "neo-migrate.prom")
	require.NoError(t, m.WriteToTextfile(f))

	data, err := os.ReadFile(f)
	require.NoError(t, err)
	require.Contains(t, string(data), `neomigrate_last_completed_migration{network="860833102"} 2`)
}
