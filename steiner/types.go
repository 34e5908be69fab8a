// Package steiner defines node states, reduction rules, statistics and
// sentinel errors for optimality-preserving search-space reduction.
package steiner

import (
	"errors"

	"github.com/katalvlaran/treeplan/distance"
	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
)

var (
	// ErrContractViolation is carried by the panic raised when a reduction
	// rule breaks an invariant (removing a target, plain-removing a node of
	// degree > 2, merging into a non-fixed target). It signals a bug, never
	// bad input.
	ErrContractViolation = errors.New("steiner: reduction contract violated")

	// ErrNoStart is returned when the search graph has no start node.
	ErrNoStart = errors.New("steiner: search graph has no start node")

	// ErrAbsorbedTarget is returned when a target passed to NewPreprocessor
	// was already merged away.
	ErrAbsorbedTarget = errors.New("steiner: target node already absorbed")
)

// Rule names a reduction that removed or merged a node.
type Rule uint8

const (
	// RuleDistance: unreachable from start, or farther from every fixed
	// target than the heaviest edge of the fixed-target spanning tree.
	RuleDistance Rule = iota
	// RuleDeadEnd: non-target with at most one neighbour.
	RuleDeadEnd
	// RuleDegreeTwo: non-target with two neighbours, contracted into one edge.
	RuleDegreeTwo
	// RuleFixedLeaf: fixed target with one neighbour; the neighbour is merged
	// into the target.
	RuleFixedLeaf
	// RuleFixedNeighbor: fixed target whose lightest edge reaches another
	// fixed target; the pair is merged.
	RuleFixedNeighbor

	ruleCount
)

var ruleNames = [ruleCount]string{
	RuleDistance:      "distance",
	RuleDeadEnd:       "dead_end",
	RuleDegreeTwo:     "degree_two",
	RuleFixedLeaf:     "fixed_leaf",
	RuleFixedNeighbor: "fixed_neighbor",
}

// String returns the snake_case rule name used in logs and metric labels.
func (r Rule) String() string {
	if r < ruleCount {
		return ruleNames[r]
	}

	return "unknown"
}

// Rules lists every rule in declaration order.
func Rules() []Rule {
	out := make([]Rule, 0, ruleCount)
	for r := Rule(0); r < ruleCount; r++ {
		out = append(out, r)
	}

	return out
}

// Stats counts what a reduction did.
type Stats struct {
	// Candidates is the search-space size before any rule ran.
	Candidates int
	// Final is the search-space size after compaction.
	Final int
	// Applied[r] counts nodes removed or merged by rule r.
	Applied [ruleCount]int
}

// Count returns how often rule r fired.
func (s Stats) Count(r Rule) int { return s.Applied[r] }

// Total returns the number of nodes eliminated by all rules.
func (s Stats) Total() int {
	total := 0
	for _, n := range s.Applied {
		total += n
	}

	return total
}

// Result is the reduced search space. Index i of every field refers to the
// same node: Lookup.IndexedNode(i), States, Edges.
type Result struct {
	// SearchSpace lists the surviving nodes in index order.
	SearchSpace []searchgraph.ID
	// Start is the index of the start node (possibly having absorbed others).
	Start int
	// Lookup is the compacted distance cache.
	Lookup *distance.Lookup
	// States holds target flags per index; nothing is marked removed.
	States *NodeStates
	// Edges is the reduced working graph.
	Edges *edgeset.Set
	// LeastSolution holds the raw ids of the fixed-target spanning tree,
	// computed before reduction; always a valid, if poor, answer.
	LeastSolution skilltree.NodeSet
	// LeastWeight is that tree's weight.
	LeastWeight uint64
	// Stats describes the reduction.
	Stats Stats
}

// FixedTargets returns the indices of fixed targets, start included.
func (r *Result) FixedTargets() []int {
	var out []int
	for i := 0; i < r.States.Len(); i++ {
		if r.States.IsFixedTarget(i) {
			out = append(out, i)
		}
	}

	return out
}

// Free returns the indices a solver may choose: everything but fixed targets.
func (r *Result) Free() []int {
	var out []int
	for i := 0; i < r.States.Len(); i++ {
		if !r.States.IsFixedTarget(i) {
			out = append(out, i)
		}
	}

	return out
}
