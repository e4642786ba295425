// Package metrics provides Prometheus metrics for assignment runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeInfeasible = "infeasible"
	OutcomeError      = "error"
)

// Manager owns every metric of the assignment engine.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	constLabels     map[string]string
	registry        prometheus.Registerer
	gatherer        prometheus.Gatherer

	runs              *prometheus.CounterVec
	runDuration       prometheus.Histogram
	activities        *prometheus.GaugeVec
	competitors       prometheus.Gauge
	clusters          prometheus.Counter
	combinations      prometheus.Counter
	placements        *prometheus.CounterVec
	backfill          prometheus.Counter
	skippedSlots      prometheus.Counter
	lastRunUnix       prometheus.Gauge
	lastRunDurationMs prometheus.Gauge
}

// Runs take milliseconds for small competitions and seconds for the largest.
var defaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// metrics go to the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "heats",
		subsystem:       "assign",
		durationBuckets: defaultDurationBuckets,
		constLabels:     map[string]string{},
		registry:        prometheus.DefaultRegisterer,
		gatherer:        prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Assignment runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of one assignment run",
		Buckets:     m.durationBuckets,
		ConstLabels: labels,
	})

	m.activities = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "activities",
		Help:        "Activities derived by the last run, by role",
		ConstLabels: labels,
	}, []string{"role"})

	m.competitors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "competitors",
		Help:        "Accepted competitors in the last run",
		ConstLabels: labels,
	})

	m.clusters = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "clusters_total",
		Help:        "Overlapping time clusters placed",
		ConstLabels: labels,
	})

	m.combinations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "combinations_total",
		Help:        "Collision-free activity combinations evaluated",
		ConstLabels: labels,
	})

	m.placements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "placements_total",
		Help:        "Competitor placements by phase and role",
		ConstLabels: labels,
	}, []string{"phase", "role"})

	m.backfill = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "backfill_iterations_total",
		Help:        "Seats filled by the backfill pass",
		ConstLabels: labels,
	})

	m.skippedSlots = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "skipped_slots_total",
		Help:        "Schedule entries that produced no activities",
		ConstLabels: labels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_unix",
		Help:        "Unix timestamp of the last finished run",
		ConstLabels: labels,
	})

	m.lastRunDurationMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_duration_milliseconds",
		Help:        "Duration of the last finished run in milliseconds",
		ConstLabels: labels,
	})
}

// RecordRun counts a finished run and its duration.
func (m *Manager) RecordRun(outcome string, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
	m.lastRunUnix.Set(float64(time.Now().Unix()))
	m.lastRunDurationMs.Set(float64(d.Milliseconds()))
}

// SetActivities sets the number of activities derived for role.
func (m *Manager) SetActivities(role string, n int) {
	m.activities.WithLabelValues(role).Set(float64(n))
}

// SetCompetitors sets the competitor count.
func (m *Manager) SetCompetitors(n int) { m.competitors.Set(float64(n)) }

// RecordClusters adds n placed clusters.
func (m *Manager) RecordClusters(n int) { m.clusters.Add(float64(n)) }

// RecordCombinations adds n evaluated combinations.
func (m *Manager) RecordCombinations(n int) { m.combinations.Add(float64(n)) }

// RecordPlacements adds n placements for phase and role.
func (m *Manager) RecordPlacements(phase, role string, n int) {
	if n <= 0 {
		return
	}
	m.placements.WithLabelValues(phase, role).Add(float64(n))
}

// RecordBackfill adds n backfill iterations.
func (m *Manager) RecordBackfill(n int) { m.backfill.Add(float64(n)) }

// RecordSkipped adds n skipped schedule entries.
func (m *Manager) RecordSkipped(n int) { m.skippedSlots.Add(float64(n)) }

// WriteTextfile writes everything the manager's gatherer holds to path in
// the Prometheus text format.
func (m *Manager) WriteTextfile(path string) error {
	if path == "" {
		return ErrNoTextfile
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}

// RecordRun counts a finished run on the global manager.
func RecordRun(outcome string, d time.Duration) { globalManager.RecordRun(outcome, d) }

// SetActivities sets the activity gauge on the global manager.
func SetActivities(role string, n int) { globalManager.SetActivities(role, n) }

// SetCompetitors sets the competitor gauge on the global manager.
func SetCompetitors(n int) { globalManager.SetCompetitors(n) }

// RecordClusters adds clusters on the global manager.
func RecordClusters(n int) { globalManager.RecordClusters(n) }

// RecordCombinations adds combinations on the global manager.
func RecordCombinations(n int) { globalManager.RecordCombinations(n) }

// RecordPlacements adds placements on the global manager.
func RecordPlacements(phase, role string, n int) { globalManager.RecordPlacements(phase, role, n) }

// RecordBackfill adds backfill iterations on the global manager.
func RecordBackfill(n int) { globalManager.RecordBackfill(n) }

// RecordSkipped adds skipped entries on the global manager.
func RecordSkipped(n int) { globalManager.RecordSkipped(n) }

// WriteTextfile dumps the custom registry to path.
func WriteTextfile(path string) error { return globalManager.WriteTextfile(path) }

// Default returns the global manager backed by the custom registry.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
