package assign

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/activity"
	"github.com/okian/heats/internal/domain/competitor"
)

// frame is one node of the subset walk: the slots chosen so far and every
// collision-free choice of one competing group per chosen slot.
type frame struct {
	next   int
	chosen []int
	combs  [][]int
}

// combine walks every subset of the cluster's slots with an explicit stack,
// including a slot before excluding it, and places the competitors eligible
// for exactly that subset. Combinations that become empty are pruned.
func (m *Master) combine(cluster []*activity.Slot, delegate bool) {
	pins := make([]int, len(cluster))
	for i := range pins {
		pins[i] = -1
	}
	processed := m.registry.NewSet()

	stack := []frame{{}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.next == len(cluster) {
			if len(f.chosen) > 0 {
				m.leaf(cluster, f.chosen, f.combs, pins, processed, delegate)
			}
			continue
		}
		stack = append(stack, frame{next: f.next + 1, chosen: f.chosen, combs: f.combs})
		if ext := m.extend(f.combs, cluster[f.next].Competing, len(f.chosen) == 0); len(ext) > 0 {
			chosen := append(append([]int(nil), f.chosen...), f.next)
			stack = append(stack, frame{next: f.next + 1, chosen: chosen, combs: ext})
		}
	}
}

func (m *Master) extend(combs [][]int, groups []int, first bool) [][]int {
	var out [][]int
	if first {
		for _, g := range groups {
			out = append(out, []int{g})
		}
		return out
	}
	for _, comb := range combs {
	next:
		for _, g := range groups {
			for _, a := range comb {
				if m.matrix.Collides(a, g) {
					continue next
				}
			}
			out = append(out, append(append(make([]int, 0, len(comb)+1), comb...), g))
		}
	}
	return out
}

// leaf places everyone who can still compete in each chosen slot and was not
// placed earlier in this pass, in ascending id order.
func (m *Master) leaf(cluster []*activity.Slot, chosen []int, combs [][]int, pins []int, processed *bitset.BitSet, delegate bool) {
	m.stats.Combinations += len(combs)

	var eligible *bitset.BitSet
	for _, pos := range chosen {
		union := m.registry.NewSet()
		for _, g := range cluster[pos].Competing {
			union.InPlaceUnion(m.activities[g].Candidates)
		}
		if eligible == nil {
			eligible = union
		} else {
			eligible.InPlaceIntersection(union)
		}
	}
	eligible = eligible.Difference(processed)

	for _, id := range members(eligible) {
		c, _ := m.registry.Get(id)
		if c.IsDelegate() != delegate {
			continue
		}

		feasible := make([][]int, 0, len(combs))
		for _, comb := range combs {
			if m.open(comb, id) {
				feasible = append(feasible, comb)
			}
		}
		if pinned := m.pinned(feasible, cluster, chosen, pins, c); len(pinned) > 0 {
			feasible = pinned
		}
		if len(feasible) == 0 {
			m.stats.Unplaced++
			continue
		}

		var comb []int
		if delegate {
			comb = m.spreadDelegates(feasible)
		} else {
			comb = m.mostRoom(feasible)
		}
		m.place(comb, id, PhaseCombination)
		processed.Set(uint(id))

		for i, pos := range chosen {
			if pins[pos] < 0 && m.final(cluster[pos]) && m.fastFor(c, cluster[pos]) {
				pins[pos] = comb[i]
			}
		}
	}
}

// open reports whether every activity of comb has a seat left for id.
func (m *Master) open(comb []int, id int) bool {
	for _, idx := range comb {
		a := m.activities[idx]
		if a.Capacity <= 0 || !a.Candidates.Test(uint(id)) {
			return false
		}
	}
	return true
}

// pinned keeps the combinations that put a fast competitor into the group
// already chosen for the first fast finalist of each pinned slot.
func (m *Master) pinned(combs [][]int, cluster []*activity.Slot, chosen []int, pins []int, c *competitor.Competitor) [][]int {
	var out [][]int
	for _, comb := range combs {
		keep := true
		for i, pos := range chosen {
			if pins[pos] >= 0 && m.fastFor(c, cluster[pos]) && comb[i] != pins[pos] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, comb)
		}
	}
	return out
}

// mostRoom picks the combination whose fullest activity has the most seats
// left. Ties keep the earliest combination.
func (m *Master) mostRoom(combs [][]int) []int {
	best, bestCap := combs[0], m.minCapacity(combs[0])
	for _, comb := range combs[1:] {
		if c := m.minCapacity(comb); c > bestCap {
			best, bestCap = comb, c
		}
	}
	return best
}

// spreadDelegates picks the combination with the fewest delegates in its
// busiest activity, then the fewest in total.
func (m *Master) spreadDelegates(combs [][]int) []int {
	best := combs[0]
	bestMax, bestSum := m.delegates(best)
	for _, comb := range combs[1:] {
		mx, sum := m.delegates(comb)
		if mx < bestMax || (mx == bestMax && sum < bestSum) {
			best, bestMax, bestSum = comb, mx, sum
		}
	}
	return best
}

func (m *Master) minCapacity(comb []int) int {
	lowest := m.activities[comb[0]].Capacity
	for _, idx := range comb[1:] {
		if c := m.activities[idx].Capacity; c < lowest {
			lowest = c
		}
	}
	return lowest
}

func (m *Master) delegates(comb []int) (int, int) {
	mx, sum := 0, 0
	for _, idx := range comb {
		d := m.activities[idx].DelegatesAssigned
		sum += d
		if d > mx {
			mx = d
		}
	}
	return mx, sum
}
