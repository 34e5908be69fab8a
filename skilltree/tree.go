package skilltree

import (
	"fmt"
	"slices"
	"sort"
)

// Tree is a validated, read-only raw graph. Safe for concurrent readers.
type Tree struct {
	nodes map[NodeID]*Node
	ids   []NodeID // sorted ascending
	attrs []string // sorted distinct attribute names
}

// New validates nodes and returns a Tree owning deep copies of them.
//
// Error Conditions:
//   - ErrEmptyTree           : len(nodes) == 0.
//   - ErrDuplicateNode       : two nodes share an id.
//   - ErrSelfLoop            : a node lists itself as neighbour.
//   - ErrUnknownNode         : a neighbour id is not declared.
//   - ErrAsymmetricAdjacency : a→b declared without b→a.
//
// Complexity: O(V + E) time and memory.
func New(nodes []Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyTree
	}

	// 1. Copy nodes and index them by id.
	t := &Tree{nodes: make(map[NodeID]*Node, len(nodes))}
	names := make(map[string]struct{})
	for i := range nodes {
		src := &nodes[i]
		if _, dup := t.nodes[src.ID]; dup {
			return nil, fmt.Errorf("New: node %d: %w", src.ID, ErrDuplicateNode)
		}
		n := &Node{
			ID:        src.ID,
			Name:      src.Name,
			Group:     src.Group,
			Kind:      src.Kind,
			Neighbors: slices.Clone(src.Neighbors),
		}
		slices.Sort(n.Neighbors)
		n.Neighbors = slices.Compact(n.Neighbors)
		if len(src.Attributes) > 0 {
			n.Attributes = make(map[string][]float64, len(src.Attributes))
			for name, values := range src.Attributes {
				n.Attributes[name] = slices.Clone(values)
				names[name] = struct{}{}
			}
		}
		t.nodes[n.ID] = n
		t.ids = append(t.ids, n.ID)
	}
	slices.Sort(t.ids)

	// 2. Validate adjacency: declared, no loops, symmetric.
	for _, id := range t.ids {
		n := t.nodes[id]
		for _, nb := range n.Neighbors {
			if nb == id {
				return nil, fmt.Errorf("New: node %d: %w", id, ErrSelfLoop)
			}
			other, ok := t.nodes[nb]
			if !ok {
				return nil, fmt.Errorf("New: neighbour %d of %d: %w", nb, id, ErrUnknownNode)
			}
			if _, found := slices.BinarySearch(other.Neighbors, id); !found {
				return nil, fmt.Errorf("New: %d->%d: %w", id, nb, ErrAsymmetricAdjacency)
			}
		}
	}

	// 3. Cache the attribute vocabulary for wildcard resolution.
	t.attrs = make([]string, 0, len(names))
	for name := range names {
		t.attrs = append(t.attrs, name)
	}
	sort.Strings(t.attrs)

	return t, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.ids) }

// IDs returns all node ids in ascending order. The slice is a copy.
func (t *Tree) IDs() []NodeID { return slices.Clone(t.ids) }

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]

	return n, ok
}

// Has reports whether id is part of the tree.
func (t *Tree) Has(id NodeID) bool {
	_, ok := t.nodes[id]

	return ok
}

// Neighbors returns the sorted adjacency of id, or nil if id is unknown.
func (t *Tree) Neighbors(id NodeID) []NodeID {
	if n, ok := t.nodes[id]; ok {
		return n.Neighbors
	}

	return nil
}

// AttributeNames returns every attribute name used by any node, sorted.
func (t *Tree) AttributeNames() []string { return slices.Clone(t.attrs) }

// Groups returns the node groups ordered by group id; nodes inside a group
// are ordered by id. Consecutive ids of one group stay adjacent, which the
// genetic encoding relies on for cluster mutation.
func (t *Tree) Groups() []Group {
	byID := make(map[int][]NodeID)
	for _, id := range t.ids {
		g := t.nodes[id].Group
		byID[g] = append(byID[g], id)
	}
	groups := make([]Group, 0, len(byID))
	for gid, ids := range byID {
		groups = append(groups, Group{ID: gid, Nodes: ids})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })

	return groups
}

// Validate checks that every id exists in the tree.
func (t *Tree) Validate(ids ...NodeID) error {
	for _, id := range ids {
		if !t.Has(id) {
			return fmt.Errorf("Validate: node %d: %w", id, ErrUnknownNode)
		}
	}

	return nil
}
