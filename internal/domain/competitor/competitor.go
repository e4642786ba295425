// Package competitor builds one record per accepted registrant and answers
// the eligibility questions the assignment engine asks about them.
package competitor

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/wcif"
)

// Role is a set of staff flags.
type Role uint8

const (
	RoleDelegate Role = 1 << iota
	RoleTraineeDelegate
	RoleOrganizer
	RoleOther
)

// ParseRoles folds WCIF role strings into a Role set.
func ParseRoles(roles []string) Role {
	var r Role
	for _, s := range roles {
		switch s {
		case "delegate":
			r |= RoleDelegate
		case "trainee-delegate":
			r |= RoleTraineeDelegate
		case "organizer":
			r |= RoleOrganizer
		default:
			r |= RoleOther
		}
	}
	return r
}

// Has reports whether every flag in x is set.
func (r Role) Has(x Role) bool { return r&x == x }

// DebtExempt reports whether the role set pays no competing debt.
func (r Role) DebtExempt() bool {
	return r&(RoleDelegate|RoleTraineeDelegate|RoleOrganizer) != 0
}

// Window is a closed time span.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether [start, end] lies within w.
func (w Window) Contains(start, end time.Time) bool {
	return !w.Start.After(start) && !w.End.Before(end)
}

// Competitor is an accepted registrant. ID is the registrant id minus one.
type Competitor struct {
	ID           int
	RegistrantID int
	Name         string
	WcaID        string
	Age          int
	Roles        Role

	events       map[event.Event]bool
	pbs          map[event.Event]int
	rules        *Rules
	debt         float64
	availability map[int]Window
	assignments  *bitset.BitSet
}

// New builds a competitor from a person. Only accepted registrations with a
// registrant id produce a competitor. Age is whole years of 365 days at the
// competition start date.
func New(p *wcif.Person, start wcif.Date, rules *Rules) (*Competitor, error) {
	if p.RegistrantID == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRegistrant, p.Name)
	}
	if !p.Accepted() {
		return nil, fmt.Errorf("%w: %s", ErrNotAccepted, p.Name)
	}
	if rules == nil {
		r := DefaultRules()
		rules = &r
	}
	c := &Competitor{
		ID:           *p.RegistrantID - 1,
		RegistrantID: *p.RegistrantID,
		Name:         p.Name,
		Roles:        ParseRoles(p.Roles),
		events:       map[event.Event]bool{},
		pbs:          map[event.Event]int{},
		rules:        rules,
		availability: map[int]Window{},
		assignments:  bitset.New(0),
	}
	if p.WcaID != nil {
		c.WcaID = *p.WcaID
	}
	if !p.Birthdate.IsZero() && !start.IsZero() {
		c.Age = int(start.Sub(p.Birthdate.Time).Hours()/24) / 365
	}
	for _, id := range p.Registration.EventIDs {
		if e, ok := event.FromCode(id); ok {
			c.events[e] = true
		}
	}
	for _, pb := range p.PersonalBests {
		e, ok := event.FromCode(pb.EventID)
		if !ok || pb.Type != e.Format().String() || pb.Best <= 0 {
			continue
		}
		c.pbs[e] = pb.Best
	}
	return c, nil
}

// RegisteredFor reports whether the competitor registered for e.
func (c *Competitor) RegisteredFor(e event.Event) bool { return c.events[e] }

// PB returns the personal best for e in the event's ranking format.
func (c *Competitor) PB(e event.Event) (int, bool) {
	v, ok := c.pbs[e]
	return v, ok
}

// HasResults reports whether the competitor has any recorded personal best.
func (c *Competitor) HasResults() bool { return len(c.pbs) > 0 }

// PBs returns a copy of the personal bests.
func (c *Competitor) PBs() map[event.Event]int {
	out := make(map[event.Event]int, len(c.pbs))
	for e, v := range c.pbs {
		out[e] = v
	}
	return out
}

// IsDelegate reports whether the competitor is a full delegate.
func (c *Competitor) IsDelegate() bool { return c.Roles.Has(RoleDelegate) }

func (c *Competitor) Debt() float64 { return c.debt }

// AddDebt accrues competing cost. Staff roles are exempt.
func (c *Competitor) AddDebt(cost float64) {
	if c.Roles.DebtExempt() {
		return
	}
	c.debt += cost
}

// PayDebt deducts the cost of a staffing placement.
func (c *Competitor) PayDebt(cost float64) { c.debt -= cost }

// AddAvailability widens the window for day to cover w. The merge keeps one
// interval per day, so gaps between activities count as available.
func (c *Competitor) AddAvailability(day int, w Window) {
	old, ok := c.availability[day]
	if !ok {
		c.availability[day] = w
		return
	}
	if w.Start.Before(old.Start) {
		old.Start = w.Start
	}
	if w.End.After(old.End) {
		old.End = w.End
	}
	c.availability[day] = old
}

// Availability returns the merged window for day.
func (c *Competitor) Availability(day int) (Window, bool) {
	w, ok := c.availability[day]
	return w, ok
}

// Available reports whether some day's window fully covers [start, end].
func (c *Competitor) Available(start, end time.Time) bool {
	for _, w := range c.availability {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}

// QualifiedScrambler reports whether the competitor may scramble e.
func (c *Competitor) QualifiedScrambler(e event.Event) bool {
	if c.Age < c.rules.ScramblerMinAge {
		return false
	}
	limit := c.rules.Thresholds[e]
	if limit <= 0 {
		return false
	}
	pb, ok := c.pbs[e.Base()]
	return ok && pb < limit
}

// QualifiedJudge reports whether the competitor may judge e.
func (c *Competitor) QualifiedJudge(e event.Event) bool {
	if !experiencedJudge[e] {
		return true
	}
	return c.Age > c.rules.JudgeMinAge && c.HasResults()
}

// Reserve sizes the assignment set for n activities.
func (c *Competitor) Reserve(n int) {
	if c.assignments.Len() < uint(n) {
		grown := bitset.New(uint(n))
		grown.InPlaceUnion(c.assignments)
		c.assignments = grown
	}
}

// Assign records a placement in activity act.
func (c *Competitor) Assign(act int) { c.assignments.Set(uint(act)) }

// Assigned reports whether the competitor is placed in activity act.
func (c *Competitor) Assigned(act int) bool { return c.assignments.Test(uint(act)) }

// Assignments returns the activity indices the competitor is placed in.
func (c *Competitor) Assignments() []int {
	out := make([]int, 0, c.assignments.Count())
	for i, ok := c.assignments.NextSet(0); ok; i, ok = c.assignments.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// AssignmentCount is the number of placements.
func (c *Competitor) AssignmentCount() int { return int(c.assignments.Count()) }
