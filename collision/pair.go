package collision

import (
	"sort"

	"github.com/milk9111/collide2d/ecs"
)

// Pair is an unordered pair of owners stored with A < B, so (x, y) and
// (y, x) produce the same key.
type Pair struct {
	A ecs.Entity
	B ecs.Entity
}

func MakePair(a, b ecs.Entity) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Has reports whether e is one side of the pair.
func (p Pair) Has(e ecs.Entity) bool {
	return p.A == e || p.B == e
}

func (p Pair) less(o Pair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

type pairSet map[Pair]struct{}

func (s pairSet) add(p Pair) bool {
	if _, ok := s[p]; ok {
		return false
	}
	s[p] = struct{}{}
	return true
}

func (s pairSet) has(p Pair) bool {
	_, ok := s[p]
	return ok
}

func (s pairSet) sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sortPairs(out)
	return out
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })
}
