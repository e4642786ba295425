// Package collision records which pairs of activities may not share a
// competitor.
package collision

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/okian/heats/internal/domain/activity"
)

// Matrix is a symmetric relation over activity indices. It is immutable once
// built.
type Matrix struct {
	rows []*bitset.BitSet
}

// New tests every unordered pair of acts. The cost is quadratic in the number
// of activities, which stays in the low hundreds for one competition.
func New(acts []*activity.Activity) *Matrix {
	n := uint(len(acts))
	m := &Matrix{rows: make([]*bitset.BitSet, n)}
	for i := range m.rows {
		m.rows[i] = bitset.New(n)
	}
	for i := 0; i < len(acts); i++ {
		for j := i + 1; j < len(acts); j++ {
			if acts[i].Collides(acts[j]) {
				m.rows[i].Set(uint(j))
				m.rows[j].Set(uint(i))
			}
		}
	}
	return m
}

// Size is the number of activities covered.
func (m *Matrix) Size() int { return len(m.rows) }

// Collides reports whether a and b may not share a competitor.
func (m *Matrix) Collides(a, b int) bool { return m.rows[a].Test(uint(b)) }

// Row returns the activities colliding with a. Callers must not modify it.
func (m *Matrix) Row(a int) *bitset.BitSet { return m.rows[a] }

// Pairs counts the colliding unordered pairs.
func (m *Matrix) Pairs() int {
	total := uint(0)
	for _, r := range m.rows {
		total += r.Count()
	}
	return int(total / 2)
}
