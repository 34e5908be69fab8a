package skilltree

import (
	"slices"
	"sync"
)

// NodeSet is a set of raw node ids.
type NodeSet map[NodeID]struct{}

// NewNodeSet returns a set holding ids.
func NewNodeSet(ids ...NodeID) NodeSet {
	s := make(NodeSet, len(ids))
	s.Add(ids...)

	return s
}

// Add inserts ids into the set.
func (s NodeSet) Add(ids ...NodeID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports membership.
func (s NodeSet) Has(id NodeID) bool {
	_, ok := s[id]

	return ok
}

// Len returns the number of ids.
func (s NodeSet) Len() int { return len(s) }

// Union adds every member of other.
func (s NodeSet) Union(other NodeSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the members in ascending order.
func (s NodeSet) Sorted() []NodeID {
	out := make([]NodeID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)

	return out
}

// SetPool recycles NodeSets during one planning session. Fitness evaluation
// expands thousands of candidate trees; reusing their sets keeps the garbage
// collector quiet. A SetPool is safe for concurrent use.
type SetPool struct {
	pool sync.Pool
}

// NewSetPool returns a pool whose fresh sets are pre-sized to capacity.
func NewSetPool(capacity int) *SetPool {
	p := &SetPool{}
	p.pool.New = func() any { return make(NodeSet, capacity) }

	return p
}

// Get returns an empty set.
func (p *SetPool) Get() NodeSet { return p.pool.Get().(NodeSet) }

// Put clears s and returns it to the pool. s must not be used afterwards.
func (p *SetPool) Put(s NodeSet) {
	if s == nil {
		return
	}
	clear(s)
	p.pool.Put(s)
}
