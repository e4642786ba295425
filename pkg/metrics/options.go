package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace replaces the "heats" prefix. Empty keeps it.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "assign" middle part of every name. Empty keeps it.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithDurationBuckets sets the run duration buckets, in seconds. Unsorted or
// empty slices are ignored.
func WithDurationBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 && sort.Float64sAreSorted(buckets) {
			m.durationBuckets = buckets
		}
	}
}

// WithCompetition labels every series with the competition id.
func WithCompetition(id string) Option {
	return WithConstLabel("competition", id)
}

// WithConstLabel adds one constant label to every series.
func WithConstLabel(name, value string) Option {
	return func(m *Manager) {
		if name != "" && value != "" {
			m.constLabels[name] = value
		}
	}
}

// WithPrometheusRegistry registers into and gathers from registry.
func WithPrometheusRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
			m.gatherer = registry
		}
	}
}
