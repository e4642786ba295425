package assign

import (
	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/pkg/logger"
)

// Option configures a Master.
type Option func(*Master)

// WithFastFactor sets how close to the field's best a result must be to count
// as fast.
func WithFastFactor(f float64) Option {
	return func(m *Master) {
		if f > 0 {
			m.fastFactor = f
		}
	}
}

// WithFastExcluded replaces the events the fast heuristic ignores.
func WithFastExcluded(events ...event.Event) Option {
	return func(m *Master) {
		m.fastExcluded = make(map[event.Event]bool, len(events))
		for _, e := range events {
			m.fastExcluded[e] = true
		}
	}
}

// WithRegistryOptions passes qualification overrides to the registry.
func WithRegistryOptions(opts ...competitor.Option) Option {
	return func(m *Master) { m.registryOpts = append(m.registryOpts, opts...) }
}

// WithLogger sets the logger for progress records.
func WithLogger(l logger.Logger) Option {
	return func(m *Master) {
		if l != nil {
			m.logger = l
		}
	}
}
