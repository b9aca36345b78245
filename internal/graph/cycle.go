package graph

import "slices"

type tarjan struct {
	graph   *Graph
	index   int
	stack   []string
	onStack map[string]bool
	indices map[string]int
	lowlink map[string]int
	sccs    [][]string
}

// Cycles returns every inheritance cycle as a sorted list of class names.
// A class naming itself as a supertype is a cycle of one. Cycles are
// ordered by their first name.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t := &tarjan{
		graph:   g,
		onStack: make(map[string]bool),
		indices: make(map[string]int),
		lowlink: make(map[string]int),
	}
	for _, id := range g.sortedNames() {
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}

	var cycles [][]string
	for _, scc := range t.sccs {
		if len(scc) == 1 && !slices.Contains(g.edges[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		cycles = append(cycles, scc)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}

func (t *tarjan) strongConnect(id string) {
	t.indices[id] = t.index
	t.lowlink[id] = t.index
	t.index++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	for _, super := range t.graph.edges[id] {
		if _, exists := t.graph.edges[super]; !exists {
			continue
		}
		if _, visited := t.indices[super]; !visited {
			t.strongConnect(super)
			t.lowlink[id] = min(t.lowlink[id], t.lowlink[super])
		} else if t.onStack[super] {
			t.lowlink[id] = min(t.lowlink[id], t.indices[super])
		}
	}

	if t.lowlink[id] != t.indices[id] {
		return
	}
	var scc []string
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	t.sccs = append(t.sccs, scc)
}
