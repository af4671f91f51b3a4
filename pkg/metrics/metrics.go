// Package metrics counts workflow runs and the mutations they make, for export
// through the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Mutation kinds
const (
	RoleCreated       = "role_created"
	PermissionGranted = "permission_granted"
	UserRolesSet      = "user_roles_set"
	RoleRemoved       = "role_removed"
	AliasBound        = "alias_bound"
	AliasUnbound      = "alias_unbound"
	GraphCopied       = "graph_copied"
	GraphDropped      = "graph_dropped"
	OptionsSet        = "options_set"
)

// Metrics holds the ngsec collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ngsec_workflow_runs_total",
		Help: "Workflow runs partitioned by workflow and outcome.",
	}, []string{"workflow", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ngsec_workflow_duration_seconds",
		Help:    "Duration in seconds of workflow runs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ngsec_mutations_total",
		Help: "Server-side mutations applied, by kind.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ngsec_mutation_failures_total",
		Help: "Server-side mutations that failed, by kind.",
	}, []string{"kind"})
	reg.MustRegister(runs, duration, mutations, failures)
	return &Metrics{registry: reg, runs: runs, duration: duration, mutations: mutations, failures: failures}
}

// Registry exposes the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Mutation counts one applied or failed mutation of kind.
func (m *Metrics) Mutation(kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(kind).Inc()
		return
	}
	m.mutations.WithLabelValues(kind).Inc()
}

// Tracker instruments a single workflow run.
type Tracker struct {
	metrics  *Metrics
	workflow string
	start    time.Time
}

// Track starts a tracker for workflow.
func (m *Metrics) Track(workflow string) *Tracker {
	return &Tracker{metrics: m, workflow: workflow, start: time.Now()}
}

// End records the run's outcome and duration.
func (t *Tracker) End(outcome string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.runs.WithLabelValues(t.workflow, outcome).Inc()
	t.metrics.duration.WithLabelValues(t.workflow).Observe(time.Since(t.start).Seconds())
}

// WriteTextfile writes every collected metric to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
