// Package assign places competitors into derived activities in two phases:
// a combination search per overlapping time cluster, then a greedy backfill
// that fills every remaining seat with the most indebted eligible competitor.
package assign

import (
	"context"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/collision"
	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/settings"
	"github.com/okian/heats/internal/domain/wcif"
	"github.com/okian/heats/pkg/logger"
)

// DefaultFastFactor is the multiple of the field's best result under which a
// competitor counts as fast.
const DefaultFastFactor = 1.25

// DefaultFastExcluded lists events whose cutoffs make the fast heuristic
// unreliable.
func DefaultFastExcluded() []event.Event {
	return []event.Event{event.E333MBF, event.E666, event.E777, event.Minx}
}

// Phase identifies which pass placed a competitor.
type Phase int

const (
	PhaseCombination Phase = iota
	PhaseBackfill
)

func (p Phase) String() string {
	if p == PhaseBackfill {
		return "backfill"
	}
	return "combination"
}

// Stats counts what one run did.
type Stats struct {
	Clusters     int
	Combinations int
	Unplaced     int
	Backfill     int
	Placed       [2][3]int
}

// Master owns every mutable structure of one run. It is not safe for
// concurrent use.
type Master struct {
	comp       *wcif.Competition
	settings   *settings.Settings
	registry   *competitor.Registry
	slots      []*activity.Slot
	activities []*activity.Activity
	skipped    []activity.Skipped
	matrix     *collision.Matrix
	finals     map[event.Event]bool

	fastFactor   float64
	fastExcluded map[event.Event]bool
	registryOpts []competitor.Option
	logger       logger.Logger

	stats Stats
	ran   bool
}

// New builds the registry, derives activities, resolves who may fill each
// one and builds the collision matrix. Competitors accrue competing debt here.
func New(comp *wcif.Competition, s *settings.Settings, opts ...Option) (*Master, error) {
	if comp == nil {
		return nil, ErrNoCompetition
	}
	if s == nil {
		s = settings.New()
	}
	m := &Master{
		comp:       comp,
		settings:   s,
		fastFactor: DefaultFastFactor,
		logger:     logger.Nop(),
		finals:     map[event.Event]bool{},
	}
	WithFastExcluded(DefaultFastExcluded()...)(m)
	for _, opt := range opts {
		opt(m)
	}

	m.registry = competitor.NewRegistry(comp, m.registryOpts...)
	d, err := activity.Derive(comp, m.registry, s)
	if err != nil {
		return nil, err
	}
	m.slots, m.activities, m.skipped = d.Slots, d.Activities, d.Skipped
	m.registry.Reserve(len(m.activities))

	for _, ev := range comp.Events {
		if e, ok := event.FromCode(ev.ID); ok && len(ev.Rounds) == 1 {
			m.finals[e] = true
		}
	}
	m.resolveCandidates()
	m.matrix = collision.New(m.activities)
	return m, nil
}

func (m *Master) resolveCandidates() {
	for _, a := range m.activities {
		var qualified func(*competitor.Competitor, event.Event) bool
		switch a.Role {
		case activity.Judging:
			qualified = (*competitor.Competitor).QualifiedJudge
		case activity.Scrambling:
			qualified = (*competitor.Competitor).QualifiedScrambler
		default:
			continue
		}
		a.Candidates = m.registry.Select(func(c *competitor.Competitor) bool {
			if c.IsDelegate() || !c.Available(a.Start, a.End) {
				return false
			}
			for _, id := range a.IDs {
				if !qualified(c, id.Event) {
					return false
				}
			}
			return true
		})
		a.Preferred.InPlaceIntersection(a.Candidates)
	}
}

// Run performs both phases. On success every activity has zero capacity left.
func (m *Master) Run(ctx context.Context) error {
	if m.ran {
		return ErrAlreadyRan
	}
	m.ran = true

	for _, cluster := range m.clusters() {
		m.stats.Clusters++
		m.logger.Debug(ctx, "placing cluster",
			logger.Int("slots", len(cluster)),
			logger.String("first", cluster[0].Events.String()))
		m.combine(cluster, true)
		m.combine(cluster, false)
	}
	m.logger.Debug(ctx, "combination phase done",
		logger.Int("clusters", m.stats.Clusters),
		logger.Int("combinations", m.stats.Combinations),
		logger.Int("unplaced", m.stats.Unplaced))

	if err := m.backfill(ctx); err != nil {
		return err
	}
	for _, a := range m.activities {
		if a.Capacity != 0 {
			return fmt.Errorf("%w: %s group %d %s has %d open seats",
				ErrInfeasible, a.IDs, a.Group+1, a.Role, a.Capacity)
		}
	}
	return nil
}

// clusters orders slots by window and groups runs whose start precedes the
// running maximum end of the run so far.
func (m *Master) clusters() [][]*activity.Slot {
	if len(m.slots) == 0 {
		return nil
	}
	order := make([]*activity.Slot, len(m.slots))
	copy(order, m.slots)
	sort.SliceStable(order, func(i, j int) bool { return order[i].Before(order[j]) })

	var out [][]*activity.Slot
	current := []*activity.Slot{order[0]}
	end := order[0].End
	for _, s := range order[1:] {
		if s.Start.Before(end) {
			current = append(current, s)
			if s.End.After(end) {
				end = s.End
			}
			continue
		}
		out = append(out, current)
		current = []*activity.Slot{s}
		end = s.End
	}
	return append(out, current)
}

// place puts id into every activity of comb and removes id from the
// candidates of everything colliding with them.
func (m *Master) place(comb []int, id int, phase Phase) {
	c, _ := m.registry.Get(id)
	for _, idx := range comb {
		a := m.activities[idx]
		if c.IsDelegate() {
			a.AssignDelegate(id)
		} else {
			a.Assign(id)
		}
		c.Assign(idx)
		row := m.matrix.Row(idx)
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			m.activities[j].RemoveCandidate(id)
		}
		m.stats.Placed[phase][a.Role]++
	}
}

// IsFast reports whether c's result in e is within the fast factor of the
// field's best.
func (m *Master) IsFast(c *competitor.Competitor, e event.Event) bool {
	if m.fastExcluded[e] {
		return false
	}
	pb, ok := c.PB(e)
	if !ok {
		return false
	}
	best, ok := m.registry.Fastest(e)
	return ok && float64(pb) < float64(best)*m.fastFactor
}

func (m *Master) fastFor(c *competitor.Competitor, s *activity.Slot) bool {
	for _, id := range s.Events {
		if !m.IsFast(c, id.Event) {
			return false
		}
	}
	return true
}

func (m *Master) final(s *activity.Slot) bool {
	for _, id := range s.Events {
		if !m.finals[id.Event] {
			return false
		}
	}
	return true
}

func (m *Master) Activities() []*activity.Activity { return m.activities }
func (m *Master) Slots() []*activity.Slot          { return m.slots }
func (m *Master) Skipped() []activity.Skipped      { return m.skipped }
func (m *Master) Registry() *competitor.Registry   { return m.registry }
func (m *Master) Matrix() *collision.Matrix        { return m.matrix }
func (m *Master) Settings() *settings.Settings     { return m.settings }
func (m *Master) Competition() *wcif.Competition   { return m.comp }
func (m *Master) Stats() Stats                     { return m.stats }

func members(set *bitset.BitSet) []int {
	out := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}
