// Package graph checks the supertype relation of indexed classes.
package graph

import (
	"slices"
	"sync"
)

// Graph maps each class name to the names of its direct supertypes.
type Graph struct {
	mu    sync.RWMutex
	edges map[string][]string
}

func New() *Graph {
	return &Graph{
		edges: make(map[string][]string),
	}
}

// Add records name with its direct supertypes, replacing any earlier entry.
func (g *Graph) Add(name string, supertypes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[name] = slices.Clone(supertypes)
}

func (g *Graph) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.edges[name]
	return ok
}

func (g *Graph) Supertypes(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.edges[name])
}

// Subtypes returns the classes naming name as a direct supertype, sorted.
func (g *Graph) Subtypes(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for id, supers := range g.edges {
		if slices.Contains(supers, name) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}

// Missing returns the supertypes that were never added, sorted.
func (g *Graph) Missing() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var missing []string
	for _, supers := range g.edges {
		for _, s := range supers {
			if _, ok := g.edges[s]; !ok && !seen[s] {
				missing = append(missing, s)
				seen[s] = true
			}
		}
	}
	slices.Sort(missing)
	return missing
}

func (g *Graph) sortedNames() []string {
	names := make([]string, 0, len(g.edges))
	for id := range g.edges {
		names = append(names, id)
	}
	slices.Sort(names)
	return names
}
