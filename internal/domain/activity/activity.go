// Package activity turns first-round schedule entries into the per-group
// competing, judging and scrambling activities the engine fills.
package activity

import (
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/event"
)

// Role is what a competitor does in an activity.
type Role int

const (
	Competing Role = iota
	Scrambling
	Judging
)

func (r Role) String() string {
	switch r {
	case Competing:
		return "competing"
	case Scrambling:
		return "scrambling"
	case Judging:
		return "judging"
	default:
		return "unknown"
	}
}

// Activity is the unit of assignment. Assigned.Count() + Capacity always
// equals InitialCapacity.
type Activity struct {
	Index int
	Slot  int
	IDs   event.Set
	Group int
	Role  Role
	Start time.Time
	End   time.Time

	Candidates *bitset.BitSet
	Preferred  *bitset.BitSet
	Assigned   *bitset.BitSet

	Capacity          int
	InitialCapacity   int
	DelegatesAssigned int
}

func newActivity(slot *Slot, group int, role Role, capacity int, start, end time.Time) *Activity {
	universe := slot.Candidates.Len()
	a := &Activity{
		Slot:            slot.Index,
		IDs:             slot.Events,
		Group:           group,
		Role:            role,
		Start:           start,
		End:             end,
		Candidates:      bitset.New(universe),
		Preferred:       slot.Candidates.Clone(),
		Assigned:        bitset.New(universe),
		Capacity:        capacity,
		InitialCapacity: capacity,
	}
	if role == Competing {
		a.Candidates = slot.Candidates.Clone()
	}
	return a
}

// Overlaps reports whether the two time windows intersect.
func (a *Activity) Overlaps(other *Activity) bool {
	return a.Start.Before(other.End) && other.Start.Before(a.End)
}

// Collides reports whether one competitor may not be placed in both
// activities: the windows overlap, or both address the same identifiers and
// either share a group or are both competing.
func (a *Activity) Collides(other *Activity) bool {
	if a.Overlaps(other) {
		return true
	}
	if !a.IDs.Equal(other.IDs) {
		return false
	}
	return a.Group == other.Group || (a.Role == Competing && other.Role == Competing)
}

// RemoveCandidate drops id from both candidate sets.
func (a *Activity) RemoveCandidate(id int) {
	a.Candidates.Clear(uint(id))
	a.Preferred.Clear(uint(id))
}

// Assign places id and consumes one unit of capacity.
func (a *Activity) Assign(id int) {
	a.Assigned.Set(uint(id))
	a.Capacity--
	a.RemoveCandidate(id)
}

// AssignDelegate places a delegate.
func (a *Activity) AssignDelegate(id int) {
	a.DelegatesAssigned++
	a.Assign(id)
}

// AvailableLeftover is candidates per remaining seat. Lower is more
// constrained.
func (a *Activity) AvailableLeftover() float64 {
	if a.Capacity <= 0 {
		return 0
	}
	return float64(a.Candidates.Count()) / float64(a.Capacity)
}

// AssignedIDs lists the placed competitor ids in ascending order.
func (a *Activity) AssignedIDs() []int {
	out := make([]int, 0, a.Assigned.Count())
	for i, ok := a.Assigned.NextSet(0); ok; i, ok = a.Assigned.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}
