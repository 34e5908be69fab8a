package steiner

import (
	"context"
	"fmt"
	"slices"

	"github.com/katalvlaran/treeplan/distance"
	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/mst"
	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
)

// Preprocessor shrinks a search graph to the nodes an optimal Steiner tree
// over its targets may use. The graph's start node is always a fixed target.
type Preprocessor struct {
	graph    *searchgraph.Graph
	fixed    []searchgraph.ID
	variable []searchgraph.ID
}

// NewPreprocessor prepares a reduction of g. fixed are the mandatory nodes,
// variable the optional high-value ones; the start node is added to fixed.
//
// Error Conditions:
//   - ErrNoStart         : g has no start node.
//   - ErrAbsorbedTarget  : a target was already merged into another node.
func NewPreprocessor(g *searchgraph.Graph, fixed, variable []searchgraph.ID) (*Preprocessor, error) {
	start, ok := g.Start()
	if !ok {
		return nil, ErrNoStart
	}
	for _, list := range [][]searchgraph.ID{fixed, variable} {
		for _, id := range list {
			if g.IsAbsorbed(id) {
				return nil, fmt.Errorf("NewPreprocessor: node %d: %w", id, ErrAbsorbedTarget)
			}
		}
	}

	p := &Preprocessor{graph: g, variable: slices.Clone(variable)}
	p.fixed = append([]searchgraph.ID{start}, fixed...)

	return p, nil
}

// Reduce runs the pipeline and returns the reduced search space.
//
// Error Conditions:
//   - distance.ErrNotConnected : a fixed target is unreachable from start.
//   - ctx.Err()                : cancelled between steps.
//
// Steps:
//  1. Candidates: every live node of degree > 2 plus every target; degree ≤ 2
//     non-targets are only ever path interiors.
//  2. Shortest paths between all candidates.
//  3. Spanning tree over fixed targets: the least solution and, when there
//     are several fixed and no variable targets, the distance bound.
//  4. Drop candidates unreachable from start and non-targets farther from
//     every fixed target than the bound.
//  5. Contract degree-2 chains into weighted edges.
//  6. Degree reduction to a fixpoint.
//  7. Compact indices, edges and states.
func (p *Preprocessor) Reduce(ctx context.Context) (*Result, error) {
	g := p.graph
	res := &Result{LeastSolution: skilltree.NewNodeSet()}

	// 1. Candidates in creation order.
	isTarget := make(map[searchgraph.ID]bool, len(p.fixed)+len(p.variable))
	for _, id := range p.fixed {
		isTarget[id] = true
	}
	for _, id := range p.variable {
		isTarget[id] = true
	}
	var candidates []searchgraph.ID
	for _, id := range g.Nodes() {
		if g.Degree(id) > 2 || isTarget[id] {
			candidates = append(candidates, id)
		}
	}
	res.Stats.Candidates = len(candidates)

	// 2. Distances.
	lookup := distance.New(g)
	lookup.CalculateFully(candidates)
	states := NewNodeStates(lookup.CacheSize())
	for _, id := range p.variable {
		states.MarkVariableTarget(g.DistancesIndex(id))
	}
	fixedIdx := make([]int, 0, len(p.fixed))
	for _, id := range p.fixed {
		i := g.DistancesIndex(id)
		states.MarkFixedTarget(i)
		fixedIdx = append(fixedIdx, i)
	}
	start := fixedIdx[0]
	for _, i := range fixedIdx {
		if !lookup.AreConnected(start, i) {
			return nil, fmt.Errorf("Reduce: target %v: %w", g.Raw(lookup.IndexedNode(i)), distance.ErrNotConnected)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Least solution and bound.
	least := mst.New(lookup, fixedIdx)
	if err := least.Span(start); err != nil {
		return nil, fmt.Errorf("Reduce: %w", err)
	}
	if err := least.UsedNodes(g, res.LeastSolution); err != nil {
		return nil, fmt.Errorf("Reduce: %w", err)
	}
	res.LeastWeight = least.Weight()
	var bound uint32 = distance.Unreachable
	if len(least.Terminals()) > 1 && len(p.variable) == 0 {
		bound = least.MaxEdgeWeight()
	}

	// 4. Distance test.
	for i := 0; i < lookup.CacheSize(); i++ {
		if !lookup.AreConnected(start, i) || (!states.IsTarget(i) && farFromFixed(lookup, fixedIdx, i, bound)) {
			states.MarkRemoved(i)
			res.Stats.Applied[RuleDistance]++
		}
	}
	lookup, states, start = compact(lookup, states, nil, start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5-6. Edges and degree reduction.
	edges := computeEdges(g, lookup)
	dt := NewDegreeTest(edges, states, lookup, g, start)
	dt.Run()
	applied := dt.Applied()
	for r := RuleDeadEnd; r < ruleCount; r++ {
		res.Stats.Applied[r] += applied[r]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 7. Compaction.
	mapping := indexMapping(states)
	res.Edges = edges.Remap(mapping)
	lookup, states, start = compact(lookup, states, mapping, dt.Start())

	res.SearchSpace = lookup.Nodes()
	res.Start = start
	res.Lookup = lookup
	res.States = states
	res.Stats.Final = len(res.SearchSpace)

	return res, nil
}

// farFromFixed reports whether i is more than bound away from every fixed target.
func farFromFixed(l *distance.Lookup, fixed []int, i int, bound uint32) bool {
	if bound == distance.Unreachable {
		return false
	}
	for _, f := range fixed {
		if l.Distance(i, f) <= bound {
			return false
		}
	}

	return true
}

// indexMapping maps each index to its position among the non-removed ones, or -1.
func indexMapping(states *NodeStates) []int {
	mapping := make([]int, states.Len())
	next := 0
	for i := range mapping {
		if states.IsRemoved(i) {
			mapping[i] = -1
			continue
		}
		mapping[i] = next
		next++
	}

	return mapping
}

// compact drops removed indices from lookup and states and translates start.
func compact(l *distance.Lookup, states *NodeStates, mapping []int, start int) (*distance.Lookup, *NodeStates, int) {
	if mapping == nil {
		mapping = indexMapping(states)
	}
	l.RemoveNodes(states.IsRemoved)

	return l, states.Remap(mapping), mapping[start]
}

// computeEdges links every pair of indices joined by a chain of unindexed
// degree-2 nodes, keeping only chains as short as the cached distance.
func computeEdges(g *searchgraph.Graph, l *distance.Lookup) *edgeset.Set {
	edges := edgeset.New(l.CacheSize())
	for i := 0; i < l.CacheSize(); i++ {
		origin := l.IndexedNode(i)
		for _, nb := range g.Adjacent(origin) {
			prev, cur := origin, nb
			var w uint32 = 1
			for g.DistancesIndex(cur) < 0 && g.Degree(cur) == 2 {
				next := g.Adjacent(cur)[0]
				if next == prev {
					next = g.Adjacent(cur)[1]
				}
				if next == origin {
					break
				}
				prev, cur = cur, next
				w++
			}
			j := g.DistancesIndex(cur)
			if j < 0 || j == i {
				continue
			}
			if w == l.Distance(i, j) {
				edges.Add(i, j, w)
			}
		}
	}

	return edges
}
