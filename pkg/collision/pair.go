// pkg/collision/pair.go
package collision

import (
	"fmt"
	"slices"
)

// Pair is an unordered pair of entity ids, stored with the lower id first.
type Pair struct {
	A, B uint64
}

// NewPair returns the canonical pair for a and b.
func NewPair(a, b uint64) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Has reports whether id is one of the pair's members.
func (p Pair) Has(id uint64) bool {
	return p.A == id || p.B == id
}

// Other returns the member that is not id.
func (p Pair) Other(id uint64) uint64 {
	if p.A == id {
		return p.B
	}
	return p.A
}

func (p Pair) String() string {
	return fmt.Sprintf("{%d, %d}", p.A, p.B)
}

func comparePairs(x, y Pair) int {
	switch {
	case x.A < y.A:
		return -1
	case x.A > y.A:
		return 1
	case x.B < y.B:
		return -1
	case x.B > y.B:
		return 1
	}
	return 0
}

// Set holds the pairs observed in one tick.
type Set struct {
	pairs map[Pair]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{pairs: make(map[Pair]struct{})}
}

// Add records the pair {a, b}. Self pairs are ignored. It reports whether
// the pair was new.
func (s *Set) Add(a, b uint64) bool {
	if a == b {
		return false
	}
	p := NewPair(a, b)
	if _, ok := s.pairs[p]; ok {
		return false
	}
	s.pairs[p] = struct{}{}
	return true
}

// Contains reports whether {a, b} is present, in either order.
func (s *Set) Contains(a, b uint64) bool {
	if s == nil {
		return false
	}
	_, ok := s.pairs[NewPair(a, b)]
	return ok
}

// Len returns the number of pairs.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Pairs returns the pairs sorted by (A, B).
func (s *Set) Pairs() []Pair {
	if s == nil {
		return nil
	}
	out := make([]Pair, 0, len(s.pairs))
	for p := range s.pairs {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// Remove drops every pair involving id and returns how many were dropped.
func (s *Set) Remove(id uint64) int {
	removed := 0
	for p := range s.pairs {
		if p.Has(id) {
			delete(s.pairs, p)
			removed++
		}
	}
	return removed
}

// Involves reports whether any pair includes id.
func (s *Set) Involves(id uint64) bool {
	if s == nil {
		return false
	}
	for p := range s.pairs {
		if p.Has(id) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := NewSet()
	if s == nil {
		return c
	}
	for p := range s.pairs {
		c.pairs[p] = struct{}{}
	}
	return c
}

// Clear removes all pairs.
func (s *Set) Clear() {
	clear(s.pairs)
}
