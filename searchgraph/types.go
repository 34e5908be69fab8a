// Package searchgraph defines the arena of condensed graph nodes the planner
// searches over, and its sentinel errors.
package searchgraph

import (
	"errors"

	"github.com/katalvlaran/treeplan/skilltree"
)

// Sentinel errors for search graph construction and merging.
var (
	// ErrUnknownNode is returned when a raw id is absent from the tree.
	ErrUnknownNode = errors.New("searchgraph: unknown raw node")

	// ErrDuplicateNode is returned when a raw id already belongs to a graph node.
	ErrDuplicateNode = errors.New("searchgraph: raw node already added")

	// ErrEmptyStart is returned when SetStartNodes is called without ids.
	ErrEmptyStart = errors.New("searchgraph: no start nodes")

	// ErrStartAlreadySet is returned by a second SetStartNodes call.
	ErrStartAlreadySet = errors.New("searchgraph: start node already set")

	// ErrAbsorbed is returned when a merge involves a node that was already absorbed.
	ErrAbsorbed = errors.New("searchgraph: node already absorbed")
)

// ID addresses a node slot in the arena. IDs are stable for the lifetime of
// a Graph: merges never move slots, they only redirect them.
type ID int

// NoID marks "no node".
const NoID ID = -1

// slot is one arena entry.
type slot struct {
	raw       []skilltree.NodeID // first element is the representative id
	adjacent  []ID               // sorted, live neighbours only
	distIndex int                // row/column in the distance matrix; -1 when unassigned
	absorbed  bool
}
