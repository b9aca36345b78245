package graph

import (
	"errors"
	"slices"
)

var ErrCycleDetected = errors.New("inheritance cycle detected")

// Order returns every class after all of its supertypes, breaking ties by
// name. Supertypes that were never added are ignored.
func (g *Graph) Order() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	subtypes := make(map[string][]string, len(g.edges))
	pending := make(map[string]int, len(g.edges))
	for id, supers := range g.edges {
		for _, s := range slices.Compact(slices.Sorted(slices.Values(supers))) {
			if _, ok := g.edges[s]; ok {
				subtypes[s] = append(subtypes[s], id)
				pending[id]++
			}
		}
	}

	var ready []string
	for _, id := range g.sortedNames() {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.edges))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := subtypes[id]
		slices.Sort(next)
		for _, sub := range next {
			pending[sub]--
			if pending[sub] == 0 {
				ready = append(ready, sub)
			}
		}
	}

	if len(order) != len(g.edges) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
