package competitor

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/wcif"
)

// Registry owns every competitor of one run, indexed by ID. The universe is
// fixed at the largest registrant id so bitsets never grow.
type Registry struct {
	competitors []*Competitor
	fastest     map[event.Event]int
	rules       Rules
}

// Option configures a Registry.
type Option func(*Registry)

// WithRules replaces the qualification rules.
func WithRules(r Rules) Option {
	return func(reg *Registry) { reg.rules = r }
}

// WithThresholds overrides individual scrambler cutoffs.
func WithThresholds(overrides map[event.Event]int) Option {
	return func(reg *Registry) {
		for e, v := range overrides {
			reg.rules.Thresholds[e] = v
		}
	}
}

// WithScramblerMinAge sets the minimum scrambler age.
func WithScramblerMinAge(age int) Option {
	return func(reg *Registry) {
		if age > 0 {
			reg.rules.ScramblerMinAge = age
		}
	}
}

// NewRegistry builds competitors from every accepted person of c.
func NewRegistry(c *wcif.Competition, opts ...Option) *Registry {
	reg := &Registry{
		fastest: map[event.Event]int{},
		rules:   DefaultRules(),
	}
	for _, opt := range opts {
		opt(reg)
	}

	size := 0
	for i := range c.Persons {
		if id := c.Persons[i].RegistrantID; id != nil && *id > size {
			size = *id
		}
	}
	reg.competitors = make([]*Competitor, size)

	for i := range c.Persons {
		comp, err := New(&c.Persons[i], c.Schedule.StartDate, &reg.rules)
		if err != nil || comp.ID < 0 {
			continue
		}
		reg.competitors[comp.ID] = comp
		for e, pb := range comp.pbs {
			if best, ok := reg.fastest[e]; !ok || pb < best {
				reg.fastest[e] = pb
			}
		}
	}
	return reg
}

// Size is the universe of competitor ids.
func (r *Registry) Size() int { return len(r.competitors) }

// Get returns the competitor with id.
func (r *Registry) Get(id int) (*Competitor, bool) {
	if id < 0 || id >= len(r.competitors) || r.competitors[id] == nil {
		return nil, false
	}
	return r.competitors[id], true
}

// All returns the competitors in ascending id order.
func (r *Registry) All() []*Competitor {
	out := make([]*Competitor, 0, len(r.competitors))
	for _, c := range r.competitors {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Len is the number of competitors.
func (r *Registry) Len() int {
	n := 0
	for _, c := range r.competitors {
		if c != nil {
			n++
		}
	}
	return n
}

// Fastest returns the best recorded personal best in the field for e.
func (r *Registry) Fastest(e event.Event) (int, bool) {
	v, ok := r.fastest[e]
	return v, ok
}

// Rules returns the qualification rules in effect.
func (r *Registry) Rules() Rules { return r.rules }

// NewSet returns an empty bitset over the competitor universe.
func (r *Registry) NewSet() *bitset.BitSet { return bitset.New(uint(len(r.competitors))) }

// Select returns the set of competitors for which keep is true.
func (r *Registry) Select(keep func(*Competitor) bool) *bitset.BitSet {
	set := r.NewSet()
	for _, c := range r.competitors {
		if c != nil && keep(c) {
			set.Set(uint(c.ID))
		}
	}
	return set
}

// Reserve sizes every competitor's assignment set for n activities.
func (r *Registry) Reserve(n int) {
	for _, c := range r.competitors {
		if c != nil {
			c.Reserve(n)
		}
	}
}
