// Package model contains the read-only result rows passed from the assignment
// engine to the outer layers.
package model

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/assign"
	"github.com/okian/heats/internal/domain/event"
)

// Person is an assigned competitor as it appears on an activity row.
type Person struct {
	ID           int    `json:"id"`
	RegistrantID int    `json:"registrantId"`
	Name         string `json:"name"`
}

// Activity is one filled group/role pair.
type Activity struct {
	IDs        []string  `json:"ids"`
	Group      int       `json:"group"` // 1-based
	Role       string    `json:"role"`
	Room       int       `json:"room"`
	ScheduleID int       `json:"scheduleId"`
	Code       string    `json:"code"` // schedule code of the group, e.g. "333-r1-g2"
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Capacity   int       `json:"capacity"`
	Assigned   []Person  `json:"assigned"`

	set  event.Set
	role activity.Role
}

// Competitor summarises where one competitor ended up.
type Competitor struct {
	ID           int     `json:"id"`
	RegistrantID int     `json:"registrantId"`
	Name         string  `json:"name"`
	WcaID        string  `json:"wcaId,omitempty"`
	Delegate     bool    `json:"delegate,omitempty"`
	Debt         float64 `json:"debt"`
	Assignments  int     `json:"assignments"`
}

// Skipped is a schedule entry that produced no activities.
type Skipped struct {
	ScheduleID int    `json:"scheduleId"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

// Result is everything a run produced.
type Result struct {
	RunID       string       `json:"runId"`
	Competition string       `json:"competition"`
	Activities  []Activity   `json:"activities"`
	Competitors []Competitor `json:"competitors"`
	Skipped     []Skipped    `json:"skipped,omitempty"`
}

// FromMaster reads the final state of m. Activities are sorted by
// identifiers, group and role; competitors by id.
func FromMaster(runID string, m *assign.Master) *Result {
	reg := m.Registry()
	slots := m.Slots()
	r := &Result{RunID: runID}
	if comp := m.Competition(); comp != nil {
		r.Competition = comp.ID
	}

	for _, a := range m.Activities() {
		slot := slots[a.Slot]
		row := Activity{
			IDs:        make([]string, len(a.IDs)),
			Group:      a.Group + 1,
			Role:       a.Role.String(),
			Room:       slot.Room,
			ScheduleID: slot.ScheduleID,
			Code:       groupCode(slot.Code, a.Group+1),
			Start:      a.Start,
			End:        a.End,
			Capacity:   a.InitialCapacity,
			Assigned:   []Person{},
			set:        a.IDs,
			role:       a.Role,
		}
		for i, id := range a.IDs {
			row.IDs[i] = id.String()
		}
		for _, id := range a.AssignedIDs() {
			c, ok := reg.Get(id)
			if !ok {
				continue
			}
			row.Assigned = append(row.Assigned, Person{ID: c.ID, RegistrantID: c.RegistrantID, Name: c.Name})
		}
		r.Activities = append(r.Activities, row)
	}
	sort.SliceStable(r.Activities, func(i, j int) bool {
		a, b := &r.Activities[i], &r.Activities[j]
		if c := a.set.Compare(b.set); c != 0 {
			return c < 0
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.role < b.role
	})

	for _, c := range reg.All() {
		r.Competitors = append(r.Competitors, Competitor{
			ID:           c.ID,
			RegistrantID: c.RegistrantID,
			Name:         c.Name,
			WcaID:        c.WcaID,
			Delegate:     c.IsDelegate(),
			Debt:         c.Debt(),
			Assignments:  c.AssignmentCount(),
		})
	}
	for _, s := range m.Skipped() {
		r.Skipped = append(r.Skipped, Skipped{ScheduleID: s.ScheduleID, Code: s.Code, Reason: s.Reason})
	}
	return r
}

// Label is the identifiers joined the way schedules print merged events.
func (a *Activity) Label() string { return strings.Join(a.IDs, "/") }

// Competitor looks up a summary row by competitor id.
func (r *Result) Competitor(id int) (Competitor, bool) {
	i := sort.Search(len(r.Competitors), func(i int) bool { return r.Competitors[i].ID >= id })
	if i < len(r.Competitors) && r.Competitors[i].ID == id {
		return r.Competitors[i], true
	}
	return Competitor{}, false
}

// For returns the rows a competitor is assigned to.
func (r *Result) For(id int) []Activity {
	var out []Activity
	for _, a := range r.Activities {
		for _, p := range a.Assigned {
			if p.ID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func groupCode(slotCode string, group int) string {
	code, err := event.ParseCode(slotCode)
	if err != nil {
		return slotCode
	}
	code.Group = group
	return code.String()
}
