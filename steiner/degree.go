package steiner

import (
	"fmt"

	"github.com/katalvlaran/treeplan/distance"
	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/tidwall/btree"
)

// DegreeTest applies the degree-based reductions of Koch & Martin (1998) and
// Beasley (1984) to an edge set until no rule fires:
//
//   - non-target, degree ≤ 1 → remove (dead end);
//   - non-target, degree 2   → remove, replacing both edges by one direct
//     edge if it is no longer than the cached shortest path;
//   - fixed target, degree 1 → its neighbour is mandatory and is merged
//     into the target;
//   - fixed target whose lightest edge leads to a fixed target → merge them.
//
// Work is driven by an ordered work-list so runs are reproducible: the
// smallest pending index is always tested next, and every removal or merge
// re-queues the indices it touched.
type DegreeTest struct {
	edges  *edgeset.Set
	states *NodeStates
	lookup *distance.Lookup
	graph  *searchgraph.Graph
	start  int

	work       *btree.BTreeG[int]
	dependents map[int][]int
	applied    [ruleCount]int
}

// NewDegreeTest prepares a reduction over edges. start is the index of the
// start node; it is tracked through merges (see Start).
func NewDegreeTest(edges *edgeset.Set, states *NodeStates, lookup *distance.Lookup, graph *searchgraph.Graph, start int) *DegreeTest {
	return &DegreeTest{
		edges:      edges,
		states:     states,
		lookup:     lookup,
		graph:      graph,
		start:      start,
		work:       btree.NewBTreeG[int](func(a, b int) bool { return a < b }),
		dependents: make(map[int][]int),
	}
}

// Start returns the index currently holding the start node.
func (d *DegreeTest) Start() int { return d.start }

// Applied returns per-rule counts of the last Run.
func (d *DegreeTest) Applied() [ruleCount]int { return d.applied }

// Run reduces to a fixpoint and returns the number of nodes eliminated.
// Re-running on its own output eliminates nothing.
//
// Complexity: every pop is O(d log d) plus merge costs; each index is
// re-queued only when one of its edges changed.
func (d *DegreeTest) Run() int {
	d.applied = [ruleCount]int{}
	for i := 0; i < d.states.Len(); i++ {
		if !d.states.IsRemoved(i) {
			d.work.Set(i)
		}
	}
	for {
		i, ok := d.work.PopMin()
		if !ok {
			break
		}
		d.test(i)
	}

	total := 0
	for _, n := range d.applied {
		total += n
	}

	return total
}

func (d *DegreeTest) test(i int) {
	if d.states.IsRemoved(i) {
		return
	}
	nbs := d.edges.NeighborsOf(i)

	switch {
	case !d.states.IsTarget(i):
		switch len(nbs) {
		case 0, 1:
			// Dead end: nothing can route through it.
			d.removeNode(i)
			d.applied[RuleDeadEnd]++
		case 2:
			// Pass-through: contract the two edges into one.
			a, b := nbs[0], nbs[1]
			ea, _ := d.edges.Edge(i, a)
			eb, _ := d.edges.Edge(i, b)
			w := ea.Weight + eb.Weight
			d.removeNode(i)
			if w <= d.lookup.Distance(a, b) {
				d.edges.Add(a, b, w)
			}
			d.applied[RuleDegreeTwo]++
		}

	case d.states.IsFixedTarget(i):
		d.testFixed(i, nbs)
	}
}

func (d *DegreeTest) testFixed(i int, nbs []int) {
	switch len(nbs) {
	case 0:
		return
	case 1:
		n := nbs[0]
		// A low-degree non-target neighbour is about to be removed or
		// contracted; retest i once that happened.
		if !d.states.IsTarget(n) && d.edges.Degree(n) <= 2 {
			d.dependents[n] = append(d.dependents[n], i)
			d.work.Set(n)
			return
		}
		d.mergeInto(n, i)
		d.applied[RuleFixedLeaf]++
		return
	}

	// Lightest incident edge; absorb the first fixed target it reaches. i is
	// re-queued by the merge, so further ties are handled on the next pop.
	var lightest uint32 = distance.Unreachable
	for _, n := range nbs {
		e, _ := d.edges.Edge(i, n)
		lightest = min(lightest, e.Weight)
	}
	for _, n := range nbs {
		e, _ := d.edges.Edge(i, n)
		if e.Weight == lightest && d.states.IsFixedTarget(n) {
			d.mergeInto(n, i)
			d.applied[RuleFixedNeighbor]++
			return
		}
	}
}

// removeNode drops a non-target of degree ≤ 2 and re-queues its neighbours.
func (d *DegreeTest) removeNode(i int) {
	if d.states.IsTarget(i) {
		panic(fmt.Errorf("removeNode(%d): node is a target: %w", i, ErrContractViolation))
	}
	if deg := d.edges.Degree(i); deg > 2 {
		panic(fmt.Errorf("removeNode(%d): degree %d > 2: %w", i, deg, ErrContractViolation))
	}

	for _, n := range d.edges.RemoveAll(i) {
		d.work.Set(n)
	}
	d.states.MarkRemoved(i)
	d.release(i)
}

// mergeInto folds index x into the fixed target into: the search graph node
// absorbs x and the raw ids of the connecting path, x's edges move to into,
// and the distance cache folds x's row into into's.
func (d *DegreeTest) mergeInto(x, into int) {
	if !d.states.IsFixedTarget(into) {
		panic(fmt.Errorf("mergeInto(%d, %d): target is not fixed: %w", x, into, ErrContractViolation))
	}
	if d.states.IsRemoved(x) || d.states.IsRemoved(into) {
		panic(fmt.Errorf("mergeInto(%d, %d): node already removed: %w", x, into, ErrContractViolation))
	}

	// 1. Merge in the arena, spending the path between both nodes.
	var via []skilltree.NodeID
	for _, id := range d.lookup.ShortestPath(x, into) {
		via = append(via, d.graph.Raw(id)...)
	}
	if err := d.graph.Merge(d.lookup.IndexedNode(x), d.lookup.IndexedNode(into), via); err != nil {
		panic(fmt.Errorf("mergeInto(%d, %d): %v: %w", x, into, err, ErrContractViolation))
	}

	// 2. Re-point x's edges; a parallel edge keeps the lighter weight.
	for _, e := range d.edges.EdgesOf(x) {
		m := e.Other(x)
		d.edges.Remove(x, m)
		if m != into {
			d.edges.Add(into, m, e.Weight)
			d.work.Set(m)
		}
	}

	// 3. Fold distances and retire x.
	d.lookup.MergeInto(x, into)
	d.states.MarkRemoved(x)
	if d.start == x {
		d.start = into
	}
	d.work.Set(into)
	d.release(x)
}

// release re-queues targets that deferred on i.
func (d *DegreeTest) release(i int) {
	for _, dep := range d.dependents[i] {
		d.work.Set(dep)
	}
	delete(d.dependents, i)
}
