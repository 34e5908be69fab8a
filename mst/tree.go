package mst

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/treeplan/dsu"
	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/skilltree"
)

const unreachable = math.MaxUint32

// Tree is a minimum spanning tree over a terminal set, measured on the
// metric closure: the weight of edge {a,b} is the shortest-path distance.
// Its weight is an upper bound on the Steiner tree for the same terminals.
type Tree struct {
	metric    PathMetric
	terminals []int
	edges     []edgeset.Edge
	weight    uint64
	spanned   bool
}

// New prepares a tree over the given terminal indices. Duplicates are dropped.
func New(metric PathMetric, terminals []int) *Tree {
	ts := slices.Clone(terminals)
	slices.Sort(ts)

	return &Tree{metric: metric, terminals: slices.Compact(ts)}
}

// Terminals returns the sorted terminal indices.
func (t *Tree) Terminals() []int { return t.terminals }

// Span runs Prim's algorithm from start.
//
// Error Conditions:
//   - ErrStartNotTerminal : start is not one of the terminals.
//   - ErrDisconnected     : some terminal is unreachable.
//
// Steps:
//  1. Mark start as included; push its edges to every other terminal.
//  2. Pop the lightest edge (ties broken by (N1, N2)); skip it when both
//     endpoints are already included.
//  3. Include the outside endpoint and push its edges to terminals still outside.
//  4. Stop after k-1 edges or when the queue empties.
//
// Complexity: O(k² log k) time, O(k²) memory for k terminals.
func (t *Tree) Span(start int) error {
	t.reset()
	k := len(t.terminals)
	if _, ok := slices.BinarySearch(t.terminals, start); !ok {
		return fmt.Errorf("Span(%d): %w", start, ErrStartNotTerminal)
	}
	if k == 1 {
		t.spanned = true
		return nil
	}

	// 1. Seed the queue from start.
	in := make(map[int]bool, k)
	pq := &edgePQ{}
	push := func(from int) {
		in[from] = true
		for _, to := range t.terminals {
			if in[to] {
				continue
			}
			if d := t.metric.Distance(from, to); d != unreachable {
				heap.Push(pq, edgeset.NewEdge(from, to, d))
			}
		}
	}
	push(start)

	// 2-3. Grow until every terminal is in.
	for pq.Len() > 0 && len(t.edges) < k-1 {
		e := heap.Pop(pq).(edgeset.Edge)
		if in[e.N1] && in[e.N2] {
			continue
		}
		next := e.N1
		if in[next] {
			next = e.N2
		}
		t.add(e)
		push(next)
	}

	// 4. Fewer than k-1 edges means some terminal was never reached.
	if len(t.edges) < k-1 {
		t.reset()
		return fmt.Errorf("Span(%d): %d of %d terminals reached: %w", start, len(in), k, ErrDisconnected)
	}
	t.spanned = true

	return nil
}

// SpanSorted runs Kruskal's algorithm over sorted, a candidate edge list in
// ascending weight order that may mention non-terminals; those edges are
// skipped. Use SortedEdges to build it once and share it between trees.
//
// Error Conditions:
//   - ErrDisconnected : fewer than k-1 edges could be accepted.
//
// Complexity: O(|sorted| · α(k)) time, O(k) memory.
func (t *Tree) SpanSorted(sorted []edgeset.Edge) error {
	t.reset()
	k := len(t.terminals)
	if k <= 1 {
		t.spanned = true
		return nil
	}

	// 1. Position of each terminal inside the DSU.
	pos := make(map[int]int, k)
	for i, n := range t.terminals {
		pos[n] = i
	}
	sets := dsu.New(k)

	// 2. Accept edges between distinct components until k-1 are in.
	for _, e := range sorted {
		a, okA := pos[e.N1]
		b, okB := pos[e.N2]
		if !okA || !okB {
			continue
		}
		if sets.Union(a, b) {
			t.add(e)
			if len(t.edges) == k-1 {
				break
			}
		}
	}

	if len(t.edges) < k-1 {
		t.reset()
		return fmt.Errorf("SpanSorted: %d of %d edges: %w", len(t.edges), k-1, ErrDisconnected)
	}
	t.spanned = true

	return nil
}

func (t *Tree) add(e edgeset.Edge) {
	t.edges = append(t.edges, e)
	t.weight += uint64(e.Weight)
}

func (t *Tree) reset() {
	t.edges = t.edges[:0]
	t.weight = 0
	t.spanned = false
}

// IsSpanned reports whether the last Span/SpanSorted succeeded.
func (t *Tree) IsSpanned() bool { return t.spanned }

// Edges returns the spanning edges in acceptance order. The slice must not be modified.
func (t *Tree) Edges() []edgeset.Edge { return t.edges }

// Weight returns the total edge weight.
func (t *Tree) Weight() uint64 { return t.weight }

// MaxEdgeWeight returns the heaviest spanning edge, or 0 without edges.
func (t *Tree) MaxEdgeWeight() uint32 {
	var m uint32
	for _, e := range t.edges {
		m = max(m, e.Weight)
	}

	return m
}

// UsedNodes adds to into every raw id the tree spends: all raw ids of every
// terminal plus all raw ids of the nodes along each spanning edge.
//
// Complexity: O(k + Σ path lengths).
func (t *Tree) UsedNodes(src RawSource, into skilltree.NodeSet) error {
	if !t.spanned {
		return ErrNotSpanned
	}
	for _, n := range t.terminals {
		into.Add(src.Raw(t.metric.IndexedNode(n))...)
	}
	for _, e := range t.edges {
		for _, id := range t.metric.ShortestPath(e.N1, e.N2) {
			into.Add(src.Raw(id)...)
		}
	}

	return nil
}

// SortedEdges returns every finite edge between the given indices, sorted
// by weight then endpoints: the input SpanSorted expects.
//
// Complexity: O(n² log n).
func SortedEdges(m Metric, indices []int) []edgeset.Edge {
	out := make([]edgeset.Edge, 0, len(indices)*(len(indices)-1)/2)
	for i, a := range indices {
		for _, b := range indices[i+1:] {
			if a == b {
				continue
			}
			if d := m.Distance(a, b); d != unreachable {
				out = append(out, edgeset.NewEdge(a, b, d))
			}
		}
	}
	slices.SortFunc(out, edgeset.Compare)

	return out
}

// edgePQ implements heap.Interface for a min-heap of edges ordered by
// edgeset.Compare, so equal weights pop in a reproducible order.
type edgePQ []edgeset.Edge

func (pq edgePQ) Len() int           { return len(pq) }
func (pq edgePQ) Less(i, j int) bool { return edgeset.Compare(pq[i], pq[j]) < 0 }
func (pq edgePQ) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *edgePQ) Push(x any)        { *pq = append(*pq, x.(edgeset.Edge)) }
func (pq *edgePQ) Pop() any {
	old := *pq
	n := len(old)
	e := old[n-1]
	*pq = old[:n-1]

	return e
}
