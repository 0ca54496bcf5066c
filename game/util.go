package game

import (
	"math/rand"
	"sort"
)

// Pile is an ordered list of card ids. Index 0 is the top.
type Pile []string

// Shuffle shuffles in place.
func (p Pile) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
}

// Take removes the top card.
func (p Pile) Take() (string, Pile) {
	if len(p) == 0 {
		return "", p
	}
	return p[0], p[1:]
}

// Count counts copies of a card.
func (p Pile) Count(id string) int {
	n := 0
	for _, x := range p {
		if x == id {
			n++
		}
	}
	return n
}

// Index finds the first copy of a card, or -1.
func (p Pile) Index(id string) int {
	for i, x := range p {
		if x == id {
			return i
		}
	}
	return -1
}

// Without removes the cards at the given indices, returning them in index
// order and the rest in the original order. Indices must be distinct and in
// range.
func (p Pile) Without(indices []int) (Pile, Pile, bool) {
	if !validIndices(indices, len(p)) {
		return nil, p, false
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	var taken, rest Pile
	j := 0
	for i, x := range p {
		if j < len(sorted) && sorted[j] == i {
			taken = append(taken, x)
			j++
			continue
		}
		rest = append(rest, x)
	}
	return taken, rest, true
}

func (p Pile) clone() Pile {
	return append(Pile(nil), p...)
}

func validIndices(indices []int, size int) bool {
	seen := map[int]bool{}
	for _, i := range indices {
		if i < 0 || i >= size || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
