// Package solver plans a connected set of skill tree nodes: it builds the
// search graph, reduces it, and searches the reduced space with a genetic
// algorithm driven by a Strategy.
package solver

import (
	"errors"

	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/steiner"
)

var (
	// ErrNoImprovement is returned with a valid Result when nothing is left
	// to search: the Result holds the fixed-target spanning tree.
	ErrNoImprovement = errors.New("solver: search space is empty, no improvement possible")

	// ErrInvalidSettings indicates settings that cannot describe a plan.
	ErrInvalidSettings = errors.New("solver: invalid settings")
)

// Strategy supplies the problem-specific parts of a session: which nodes
// enter the search graph, which are worth selecting, and how a candidate
// tree is scored. Fitness is called concurrently and must not mutate shared
// state.
type Strategy interface {
	// MustIncludeNodeGroup reports whether n makes its whole group part of
	// the search graph.
	MustIncludeNodeGroup(n *skilltree.Node) bool
	// IncludeNodeInSearchGraph reports whether n may enter the search graph
	// unless checked.
	IncludeNodeInSearchGraph(n *skilltree.Node) bool
	// IsVariableTarget reports whether n is worth selecting on its own.
	IsVariableTarget(n *skilltree.Node) bool
	// SearchSpaceReady is called once after reduction with the raw ids every
	// solution contains.
	SearchSpaceReady(fixed skilltree.NodeSet)
	// Fitness scores the raw node set of a candidate tree; higher is better.
	Fitness(used skilltree.NodeSet) float64
}

// Reporter is implemented by strategies that can explain a final tree.
type Reporter interface {
	// Unsatisfied names the minimum constraints used leaves below target.
	Unsatisfied(used skilltree.NodeSet) []string
}

// Result is the outcome of a session.
type Result struct {
	// SessionID identifies the session in logs.
	SessionID string
	// Nodes are the selected raw ids in ascending order.
	Nodes []skilltree.NodeID
	// Fitness is the strategy's score of Nodes.
	Fitness float64
	// UsedPoints counts Nodes without root nodes.
	UsedPoints int
	// LeastSolution is the fixed-target spanning tree, always a valid fallback.
	LeastSolution []skilltree.NodeID
	// Unsatisfied lists minimum constraints left below target (Reporter only).
	Unsatisfied []string
	// SearchSpace is the size of the reduced search space.
	SearchSpace int
	// Reduction describes the preprocessing.
	Reduction steiner.Stats
	// Generations, Evaluations and CacheHits describe the genetic search.
	Generations int
	Evaluations uint64
	CacheHits   uint64
}
