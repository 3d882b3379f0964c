package migration

import (
	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "neomigrate"

// Metrics collects migration statistics. It uses its own registry, so
// several runners (like in tests) don't interfere.
type Metrics struct {
	registry *prometheus.Registry

	migrations    *prometheus.CounterVec
	deployments   *prometheus.CounterVec
	gasConsumed   *prometheus.CounterVec
	lastCompleted *prometheus.GaugeVec
}

// NewMetrics creates and registers all migration metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		migrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "Number of migrations run",
				Name:      "migrations_total",
				Namespace: metricsNamespace,
			},
			[]string{"network", "status"},
		),
		deployments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "Number of recorded contract deployments",
				Name:      "deployments_total",
				Namespace: metricsNamespace,
			},
			[]string{"network", "kind"},
		),
		gasConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "GAS (in fractions) spent on contract deployments",
				Name:      "deployment_gas_consumed_total",
				Namespace: metricsNamespace,
			},
			[]string{"network"},
		),
		lastCompleted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Help:      "Number of the last completed migration",
				Name:      "last_completed_migration",
				Namespace: metricsNamespace,
			},
			[]string{"network"},
		),
	}
	m.registry.MustRegister(
		m.migrations,
		m.deployments,
		m.gasConsumed,
		m.lastCompleted,
	)
	return m
}

// Gatherer returns the registry all metrics are registered in.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes all metrics into the file in the format used by
// textfile collector of node_exporter.
func (m *Metrics) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}

func (m *Metrics) migrationDone(network string, err error) {
	var status = "completed"
	if err != nil {
		status = "failed"
	}
	m.migrations.WithLabelValues(network, status).Inc()
}

func (m *Metrics) setLastCompleted(network string, n int) {
	m.lastCompleted.WithLabelValues(network).Set(float64(n))
}

func (m *Metrics) deployed(network string, d deployer.Deployment) {
	kind := "deployed"
	switch {
	case d.DryRun:
		kind = "simulated"
	case d.Skipped:
		kind = "skipped"
	}
	m.deployments.WithLabelValues(network, kind).Inc()
	if !d.DryRun {
		m.gasConsumed.WithLabelValues(network).Add(float64(d.GasConsumed))
	}
}

type metricsJournal struct {
	deployer.Journal

	network string
	metrics *Metrics
}

// Record implements the deployer.Journal interface.
func (j metricsJournal) Record(d deployer.Deployment) error {
	err := j.Journal.Record(d)
	if err == nil {
		j.metrics.deployed(j.network, d)
	}
	return err
}

// Journal wraps the given journal so that successfully recorded deployments
// are also counted. The result is j itself if m is nil.
func (m *Metrics) Journal(j deployer.Journal, network string) deployer.Journal {
	if m == nil {
		return j
	}
	return metricsJournal{Journal: j, network: network, metrics: m}
}
