// Package mst defines the metric interfaces and sentinel errors for spanning
// trees over the metric closure of a distance lookup.
package mst

import (
	"errors"

	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
)

// ErrDisconnected indicates that the terminals cannot all be spanned.
var ErrDisconnected = errors.New("mst: terminals are disconnected")

// ErrStartNotTerminal indicates that Prim was asked to grow from an index
// outside the terminal set.
var ErrStartNotTerminal = errors.New("mst: start is not a terminal")

// ErrNotSpanned is returned by accessors called before a successful Span.
var ErrNotSpanned = errors.New("mst: tree not spanned")

// Metric is a symmetric distance over indices. distance.Lookup implements it;
// unreachable pairs report distance.Unreachable.
type Metric interface {
	Distance(a, b int) uint32
}

// PathMetric is a Metric that can also name the nodes an edge spends.
type PathMetric interface {
	Metric
	ShortestPath(a, b int) []searchgraph.ID
	IndexedNode(i int) searchgraph.ID
}

// RawSource expands a search graph node into raw ids. searchgraph.Graph
// implements it.
type RawSource interface {
	Raw(id searchgraph.ID) []skilltree.NodeID
}
