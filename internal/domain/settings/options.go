package settings

import "github.com/okian/heats/internal/domain/event"

// Option configures Settings.
type Option func(*Settings)

// WithDefaultStageCapacity sets the capacity used for rooms that have no
// stage statement. Zero keeps a missing stage an error.
func WithDefaultStageCapacity(n int) Option {
	return func(s *Settings) {
		if n > 0 {
			s.defaultStage = n
		}
	}
}

// WithScrambleCosts overrides scramble coefficients per event.
func WithScrambleCosts(costs map[event.Event]float64) Option {
	return func(s *Settings) {
		for e, v := range costs {
			s.SetScrambleCost(e, v)
		}
	}
}

// WithJudgeCosts overrides judge coefficients per event.
func WithJudgeCosts(costs map[event.Event]float64) Option {
	return func(s *Settings) {
		for e, v := range costs {
			s.SetJudgeCost(e, v)
		}
	}
}

// WithStaffMultipliers overrides staff multipliers per event.
func WithStaffMultipliers(m map[event.Event]float64) Option {
	return func(s *Settings) {
		for e, v := range m {
			s.SetStaffMultiplier(e, v)
		}
	}
}
