package searchgraph

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/treeplan/skilltree"
)

// Graph is the search graph: an arena of nodes, each condensing one or more
// raw ids, linked wherever their raw ids are adjacent in the tree.
//
// Concurrency: not safe for concurrent mutation. Readers may share a Graph
// once construction and reduction are finished.
type Graph struct {
	tree     *skilltree.Tree
	slots    []slot
	byRaw    map[skilltree.NodeID]ID
	redirect []ID // redirect[i] == i for live slots
	start    ID
}

// New returns an empty search graph over tree.
func New(tree *skilltree.Tree) *Graph {
	return &Graph{
		tree:  tree,
		byRaw: make(map[skilltree.NodeID]ID),
		start: NoID,
	}
}

// Tree returns the underlying raw graph.
func (g *Graph) Tree() *skilltree.Tree { return g.tree }

// AddNode adds a single raw node and links it to every existing graph node
// holding one of its raw neighbours.
//
// Complexity: O(deg · log deg) for the adjacency inserts.
func (g *Graph) AddNode(raw skilltree.NodeID) (ID, error) {
	return g.add([]skilltree.NodeID{raw})
}

// SetStartNodes condenses ids into one super-node used as the start location.
// Only one start node may exist per graph.
func (g *Graph) SetStartNodes(ids []skilltree.NodeID) (ID, error) {
	if len(ids) == 0 {
		return NoID, ErrEmptyStart
	}
	if g.start != NoID {
		return NoID, ErrStartAlreadySet
	}
	id, err := g.add(ids)
	if err != nil {
		return NoID, fmt.Errorf("SetStartNodes: %w", err)
	}
	g.start = id

	return id, nil
}

func (g *Graph) add(raws []skilltree.NodeID) (ID, error) {
	// 1. Validate every raw id before mutating anything.
	for _, r := range raws {
		if !g.tree.Has(r) {
			return NoID, fmt.Errorf("AddNode(%d): %w", r, ErrUnknownNode)
		}
		if _, dup := g.byRaw[r]; dup {
			return NoID, fmt.Errorf("AddNode(%d): %w", r, ErrDuplicateNode)
		}
	}

	// 2. Allocate the slot.
	id := ID(len(g.slots))
	g.slots = append(g.slots, slot{raw: slices.Clone(raws), distIndex: -1})
	g.redirect = append(g.redirect, id)
	for _, r := range raws {
		g.byRaw[r] = id
	}

	// 3. Link to existing nodes adjacent in the raw tree.
	for _, r := range raws {
		for _, nb := range g.tree.Neighbors(r) {
			other, ok := g.byRaw[nb]
			if !ok || other == id {
				continue
			}
			g.link(id, other)
		}
	}

	return id, nil
}

func (g *Graph) link(a, b ID) {
	g.slots[a].adjacent = insertSorted(g.slots[a].adjacent, b)
	g.slots[b].adjacent = insertSorted(g.slots[b].adjacent, a)
}

func (g *Graph) unlink(a, b ID) {
	g.slots[a].adjacent = removeSorted(g.slots[a].adjacent, b)
	g.slots[b].adjacent = removeSorted(g.slots[b].adjacent, a)
}

// Start returns the start super-node, if set.
func (g *Graph) Start() (ID, bool) { return g.start, g.start != NoID }

// Len returns the arena size, absorbed slots included.
func (g *Graph) Len() int { return len(g.slots) }

// Nodes returns all live node ids in creation order.
func (g *Graph) Nodes() []ID {
	out := make([]ID, 0, len(g.slots))
	for i := range g.slots {
		if !g.slots[i].absorbed {
			out = append(out, ID(i))
		}
	}

	return out
}

// Lookup returns the live node currently holding raw id r.
func (g *Graph) Lookup(r skilltree.NodeID) (ID, bool) {
	id, ok := g.byRaw[r]
	if !ok {
		return NoID, false
	}

	return g.Resolve(id), true
}

// Raw returns the raw ids condensed in id. The slice must not be modified.
func (g *Graph) Raw(id ID) []skilltree.NodeID { return g.slots[id].raw }

// Representative returns the first raw id of the node.
func (g *Graph) Representative(id ID) skilltree.NodeID { return g.slots[id].raw[0] }

// Adjacent returns the sorted live neighbours of id. The slice must not be modified.
func (g *Graph) Adjacent(id ID) []ID { return g.slots[id].adjacent }

// Degree returns the number of live neighbours.
func (g *Graph) Degree(id ID) int { return len(g.slots[id].adjacent) }

// DistancesIndex returns the distance-matrix row of id, or -1.
func (g *Graph) DistancesIndex(id ID) int { return g.slots[id].distIndex }

// SetDistancesIndex assigns the distance-matrix row of id. -1 clears it.
func (g *Graph) SetDistancesIndex(id ID, idx int) { g.slots[id].distIndex = idx }

// IsAbsorbed reports whether id was merged into another node.
func (g *Graph) IsAbsorbed(id ID) bool { return g.slots[id].absorbed }

// Resolve follows the merge redirect table to the live node that absorbed id.
// Path compression keeps chains short.
func (g *Graph) Resolve(id ID) ID {
	root := id
	for g.redirect[root] != root {
		root = g.redirect[root]
	}
	for g.redirect[id] != root {
		next := g.redirect[id]
		g.redirect[id] = root
		id = next
	}

	return root
}

// Merge folds from into into: into absorbs from's raw ids, the raw ids on the
// connecting path via, and from's adjacency. from is marked absorbed and
// redirected to into; its slot is kept for id stability.
//
// Error Conditions:
//   - ErrAbsorbed : either node is already absorbed, or from == into.
//
// Complexity: O(deg(from) · log deg) plus the raw id copy.
func (g *Graph) Merge(from, into ID, via []skilltree.NodeID) error {
	if from == into || g.slots[from].absorbed || g.slots[into].absorbed {
		return fmt.Errorf("Merge(%d→%d): %w", from, into, ErrAbsorbed)
	}

	// 1. Union raw ids, keeping into's representative first.
	dst := &g.slots[into]
	seen := make(map[skilltree.NodeID]struct{}, len(dst.raw)+len(g.slots[from].raw)+len(via))
	for _, r := range dst.raw {
		seen[r] = struct{}{}
	}
	for _, list := range [][]skilltree.NodeID{g.slots[from].raw, via} {
		for _, r := range list {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			dst.raw = append(dst.raw, r)
		}
	}

	// 2. Re-point from's neighbours to into.
	for _, nb := range slices.Clone(g.slots[from].adjacent) {
		g.unlink(from, nb)
		if nb != into {
			g.link(into, nb)
		}
	}

	// 3. Redirect and retire the absorbed slot.
	g.redirect[from] = into
	g.slots[from].absorbed = true
	g.slots[from].distIndex = -1
	if g.start == from {
		g.start = into
	}

	return nil
}

func insertSorted(s []ID, v ID) []ID {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}

	return slices.Insert(s, i, v)
}

func removeSorted(s []ID, v ID) []ID {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}

	return slices.Delete(s, i, i+1)
}
