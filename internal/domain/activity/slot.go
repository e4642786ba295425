package activity

import (
	"math"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/event"
)

// Slot is a first-round schedule entry before it is split into groups.
type Slot struct {
	Index      int
	Room       int
	ScheduleID int
	Code       string
	Events     event.Set
	Start      time.Time
	End        time.Time
	Candidates *bitset.BitSet

	// Competing holds the competing activity of each group in order.
	Competing []int
	// Activities holds every activity derived from the slot.
	Activities []int
}

// Before orders slots by start, end, then identifiers.
func (s *Slot) Before(other *Slot) bool {
	if !s.Start.Equal(other.Start) {
		return s.Start.Before(other.Start)
	}
	if !s.End.Equal(other.End) {
		return s.End.Before(other.End)
	}
	return s.Events.Compare(other.Events) < 0
}

// GroupSizes splits n competitors into max(ceil(n/capacity), minGroups)
// groups. The first n mod g groups get one extra competitor.
func GroupSizes(n, capacity, minGroups int) []int {
	if n <= 0 || capacity <= 0 {
		return nil
	}
	groups := (n + capacity - 1) / capacity
	if minGroups > groups {
		groups = minGroups
	}
	base, extra := n/groups, n%groups
	sizes := make([]int, groups)
	for g := range sizes {
		sizes[g] = base
		if g < extra {
			sizes[g]++
		}
	}
	return sizes
}

// staffCapacity is ceil(size*cost), tolerant of float noise such as
// 100*0.07 = 7.000000000000001.
func staffCapacity(size int, cost float64) int {
	return int(math.Ceil(float64(size)*cost - 1e-9))
}
