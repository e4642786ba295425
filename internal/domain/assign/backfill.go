package assign

import (
	"context"
	"fmt"

	"github.com/okian/heats/pkg/logger"
)

// backfill repeatedly fills the most constrained open activity with the most
// indebted eligible competitor, preferring those registered for its events.
// Ties go to the lowest activity index and the lowest competitor id.
func (m *Master) backfill(ctx context.Context) error {
	for {
		idx := -1
		ratio := 0.0
		for i, a := range m.activities {
			if a.Capacity <= 0 {
				continue
			}
			if r := a.AvailableLeftover(); idx < 0 || r < ratio {
				idx, ratio = i, r
			}
		}
		if idx < 0 {
			return nil
		}

		a := m.activities[idx]
		pool := a.Preferred
		if pool.None() {
			pool = a.Candidates
		}
		pick, debt := -1, 0.0
		for _, id := range members(pool) {
			c, _ := m.registry.Get(id)
			if pick < 0 || c.Debt() > debt {
				pick, debt = id, c.Debt()
			}
		}
		if pick < 0 {
			return fmt.Errorf("%w: %s group %d %s has %d open seats and no candidates",
				ErrInfeasible, a.IDs, a.Group+1, a.Role, a.Capacity)
		}

		m.place([]int{idx}, pick, PhaseBackfill)
		cost := 0.0
		for _, id := range a.IDs {
			cost += m.settings.StaffMultiplier(id.Event)
		}
		c, _ := m.registry.Get(pick)
		c.PayDebt(cost)
		m.stats.Backfill++

		m.logger.Debug(ctx, "backfilled seat",
			logger.String("activity", a.IDs.String()),
			logger.Int("group", a.Group+1),
			logger.String("role", a.Role.String()),
			logger.Int("competitor", pick),
			logger.Float64("debt", c.Debt()))
	}
}
