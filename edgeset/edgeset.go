// Package edgeset stores the live working graph of search-space reduction:
// undirected weighted edges between distance-matrix indices.
package edgeset

import (
	"fmt"
	"slices"
)

// Edge is an undirected edge between two distance-matrix indices. N1 < N2
// always holds, so equality ignores the order endpoints were given in.
type Edge struct {
	N1, N2 int
	Weight uint32
}

// NewEdge returns the normalised edge {a,b}. It panics on a == b: a loop is
// never a meaningful spanning or reduction edge.
func NewEdge(a, b int, weight uint32) Edge {
	if a == b {
		panic(fmt.Sprintf("edgeset: loop edge on %d", a))
	}
	if a > b {
		a, b = b, a
	}

	return Edge{N1: a, N2: b, Weight: weight}
}

// Other returns the endpoint opposite to n.
func (e Edge) Other(n int) int {
	if e.N1 == n {
		return e.N2
	}

	return e.N1
}

// Has reports whether n is an endpoint.
func (e Edge) Has(n int) bool { return e.N1 == n || e.N2 == n }

// Compare orders edges by weight, then N1, then N2. Used wherever a
// deterministic edge order is needed.
func Compare(a, b Edge) int {
	switch {
	case a.Weight != b.Weight:
		if a.Weight < b.Weight {
			return -1
		}
		return 1
	case a.N1 != b.N1:
		return a.N1 - b.N1
	default:
		return a.N2 - b.N2
	}
}

// Set is a sparse adjacency of edges over indices 0..size-1. At most one
// edge exists per pair; adding a parallel edge keeps the lighter weight.
//
// Complexity: Add, Remove, Edge and Degree are O(1); NeighborsOf is
// O(d log d) because results are sorted.
type Set struct {
	adj   []map[int]uint32
	count int
}

// New returns an empty set over size indices.
func New(size int) *Set {
	return &Set{adj: make([]map[int]uint32, size)}
}

// Size returns the number of addressable indices.
func (s *Set) Size() int { return len(s.adj) }

// Len returns the number of edges.
func (s *Set) Len() int { return s.count }

// Add inserts {a,b} with weight w. If the pair exists the lighter weight
// wins. It reports whether the set changed.
func (s *Set) Add(a, b int, w uint32) bool {
	e := NewEdge(a, b, w)
	if old, ok := s.adj[e.N1][e.N2]; ok {
		if old <= w {
			return false
		}
		s.adj[e.N1][e.N2] = w
		s.adj[e.N2][e.N1] = w
		return true
	}
	if s.adj[e.N1] == nil {
		s.adj[e.N1] = make(map[int]uint32)
	}
	if s.adj[e.N2] == nil {
		s.adj[e.N2] = make(map[int]uint32)
	}
	s.adj[e.N1][e.N2] = w
	s.adj[e.N2][e.N1] = w
	s.count++

	return true
}

// Remove deletes {a,b}. It reports whether the edge existed.
func (s *Set) Remove(a, b int) bool {
	if _, ok := s.adj[a][b]; !ok {
		return false
	}
	delete(s.adj[a], b)
	delete(s.adj[b], a)
	s.count--

	return true
}

// RemoveAll deletes every edge incident to n and returns the former
// neighbours in ascending order.
func (s *Set) RemoveAll(n int) []int {
	nbs := s.NeighborsOf(n)
	for _, m := range nbs {
		s.Remove(n, m)
	}

	return nbs
}

// Edge returns the edge {a,b}.
func (s *Set) Edge(a, b int) (Edge, bool) {
	w, ok := s.adj[a][b]
	if !ok {
		return Edge{}, false
	}

	return NewEdge(a, b, w), true
}

// Degree returns the number of edges incident to n.
func (s *Set) Degree(n int) int { return len(s.adj[n]) }

// NeighborsOf returns the neighbours of n in ascending order.
func (s *Set) NeighborsOf(n int) []int {
	out := make([]int, 0, len(s.adj[n]))
	for m := range s.adj[n] {
		out = append(out, m)
	}
	slices.Sort(out)

	return out
}

// EdgesOf returns the edges incident to n ordered by the opposite endpoint.
func (s *Set) EdgesOf(n int) []Edge {
	nbs := s.NeighborsOf(n)
	out := make([]Edge, len(nbs))
	for i, m := range nbs {
		out[i] = NewEdge(n, m, s.adj[n][m])
	}

	return out
}

// Edges returns every edge ordered by (N1, N2).
func (s *Set) Edges() []Edge {
	out := make([]Edge, 0, s.count)
	for n := range s.adj {
		for _, m := range s.NeighborsOf(n) {
			if n < m {
				out = append(out, Edge{N1: n, N2: m, Weight: s.adj[n][m]})
			}
		}
	}

	return out
}

// Remap returns a new set whose index i holds the edges of old index j where
// mapping[j] == i. Edges touching an index mapped to -1 are dropped; the new
// size is max(mapping)+1.
func (s *Set) Remap(mapping []int) *Set {
	size := 0
	for _, m := range mapping {
		if m+1 > size {
			size = m + 1
		}
	}
	out := New(size)
	for _, e := range s.Edges() {
		if e.N1 >= len(mapping) || e.N2 >= len(mapping) {
			continue
		}
		a, b := mapping[e.N1], mapping[e.N2]
		if a < 0 || b < 0 || a == b {
			continue
		}
		out.Add(a, b, e.Weight)
	}

	return out
}
