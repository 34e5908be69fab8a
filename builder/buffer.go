// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// buffer.go - mutable node accumulator shared by constructors of one BuildTree call.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

// buffer collects nodes and symmetric edges before validation.
type buffer struct {
	order  []skilltree.NodeID
	byID   map[skilltree.NodeID]*skilltree.Node
	calls  [][]skilltree.NodeID // nodes created per constructor call
	groups int
}

func newBuffer() *buffer {
	return &buffer{byID: make(map[skilltree.NodeID]*skilltree.Node)}
}

// beginCall opens a new constructor call and returns its group id.
func (b *buffer) beginCall() int {
	b.calls = append(b.calls, nil)
	g := b.groups
	b.groups++

	return g
}

// nextGroup allocates an extra group id inside the current call.
func (b *buffer) nextGroup() int {
	g := b.groups
	b.groups++

	return g
}

// addNode creates the next node: its id comes from cfg.idFn applied to the
// global creation index, so composed constructors never collide.
func (b *buffer) addNode(cfg builderConfig, group int) (skilltree.NodeID, error) {
	idx := len(b.order)
	id := cfg.idFn(idx)
	if _, dup := b.byID[id]; dup {
		return 0, fmt.Errorf("addNode(%d): id %d: %w", idx, id, ErrConstructFailed)
	}
	n := &skilltree.Node{
		ID:    id,
		Name:  fmt.Sprintf("node %d", idx),
		Group: group,
		Kind:  cfg.kindFn(idx),
	}
	if cfg.attrFn != nil {
		n.Attributes = cfg.attrFn(idx, cfg.rng)
	}
	b.byID[id] = n
	b.order = append(b.order, id)
	if len(b.calls) > 0 {
		last := len(b.calls) - 1
		b.calls[last] = append(b.calls[last], id)
	}

	return id, nil
}

// addEdge links u and v symmetrically. Duplicate edges are ignored.
func (b *buffer) addEdge(u, v skilltree.NodeID) error {
	nu, okU := b.byID[u]
	nv, okV := b.byID[v]
	if !okU || !okV || u == v {
		return fmt.Errorf("addEdge(%d,%d): %w", u, v, ErrConstructFailed)
	}
	for _, x := range nu.Neighbors {
		if x == v {
			return nil
		}
	}
	nu.Neighbors = append(nu.Neighbors, v)
	nv.Neighbors = append(nv.Neighbors, u)

	return nil
}

// nodes returns the buffered nodes in creation order.
func (b *buffer) nodes() []skilltree.Node {
	out := make([]skilltree.Node, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.byID[id])
	}

	return out
}
