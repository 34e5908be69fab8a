// Package dsu provides a disjoint-set (union-find) forest over dense integer
// elements, with path compression and union by rank.
package dsu

// DisjointSet partitions the elements 0..n-1.
//
// Complexity: Find and Union run in O(α(n)) amortised time.
type DisjointSet struct {
	parent []int
	rank   []uint8
	sets   int
}

// New returns n singleton sets.
func New(n int) *DisjointSet {
	d := &DisjointSet{
		parent: make([]int, n),
		rank:   make([]uint8, n),
		sets:   n,
	}
	for i := range d.parent {
		d.parent[i] = i
	}

	return d
}

// Find returns the representative of x's set.
func (d *DisjointSet) Find(x int) int {
	// Iterative find with path halving, no recursion.
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}

	return x
}

// Union merges the sets of a and b. It returns false if they were already joined.
func (d *DisjointSet) Union(a, b int) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	// Attach the shallower tree under the deeper one.
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
	d.sets--

	return true
}

// Connected reports whether a and b share a set.
func (d *DisjointSet) Connected(a, b int) bool { return d.Find(a) == d.Find(b) }

// Sets returns the number of disjoint sets.
func (d *DisjointSet) Sets() int { return d.sets }

// Len returns the number of elements.
func (d *DisjointSet) Len() int { return len(d.parent) }
