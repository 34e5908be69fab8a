package distance

import (
	"github.com/katalvlaran/treeplan/searchgraph"
)

// Lookup caches shortest-path weights and the inner nodes of each shortest
// path between every pair of indexed search graph nodes. Index i addresses
// the node with searchgraph DistancesIndex i.
//
// Storage is a lower triangle (row i holds columns 0..i-1), so symmetry is
// structural: Distance(i,j) and Distance(j,i) read the same cell.
//
// Concurrency: reads are safe once mutation (CalculateFully, MergeInto,
// RemoveNodes) has stopped. Mutations must be serialised by the caller.
type Lookup struct {
	graph *searchgraph.Graph
	nodes []searchgraph.ID
	dist  [][]uint32
	paths [][][]searchgraph.ID

	// BFS scratch, sized to the graph arena.
	parent []searchgraph.ID
	seen   []uint32
	stamp  uint32
}

// New returns an empty lookup over g.
func New(g *searchgraph.Graph) *Lookup {
	return &Lookup{graph: g}
}

// CacheSize returns the number of indexed nodes.
func (l *Lookup) CacheSize() int { return len(l.nodes) }

// IndexedNode returns the node at index i.
func (l *Lookup) IndexedNode(i int) searchgraph.ID { return l.nodes[i] }

// Nodes returns the indexed nodes in index order. The slice is a copy.
func (l *Lookup) Nodes() []searchgraph.ID {
	out := make([]searchgraph.ID, len(l.nodes))
	copy(out, l.nodes)

	return out
}

// CalculateFully assigns the next free indices to every node in nodes that
// has none yet, then fills in all pairwise entries that are still unknown.
//
// Steps:
//  1. Append unindexed nodes, writing their DistancesIndex into the graph.
//  2. Grow the triangle by one row per new index.
//  3. Breadth-first search from each new index i over the search graph's
//     unit-weight adjacency, recording distance and predecessor for every
//     indexed node j < i.
//
// Complexity: O(k · (V + E)) for k new indices.
func (l *Lookup) CalculateFully(nodes []searchgraph.ID) {
	// 1. Assign indices.
	first := len(l.nodes)
	for _, n := range nodes {
		if l.graph.DistancesIndex(n) >= 0 {
			continue
		}
		l.graph.SetDistancesIndex(n, len(l.nodes))
		l.nodes = append(l.nodes, n)
	}

	// 2. Grow rows, unknown cells start unreachable.
	for i := first; i < len(l.nodes); i++ {
		row := make([]uint32, i)
		for j := range row {
			row[j] = Unreachable
		}
		l.dist = append(l.dist, row)
		l.paths = append(l.paths, make([][]searchgraph.ID, i))
	}

	// 3. One BFS per new row.
	if size := l.graph.Len(); len(l.parent) < size {
		l.parent = make([]searchgraph.ID, size)
		l.seen = make([]uint32, size)
		l.stamp = 0
	}
	for i := first; i < len(l.nodes); i++ {
		l.search(i)
	}
}

// search runs BFS from index i and fills row i.
func (l *Lookup) search(i int) {
	l.stamp++
	src := l.nodes[i]
	l.seen[src] = l.stamp
	queue := []searchgraph.ID{src}
	remaining := i

	for head := 0; head < len(queue) && remaining > 0; head++ {
		cur := queue[head]
		for _, nb := range l.graph.Adjacent(cur) {
			if l.seen[nb] == l.stamp {
				continue
			}
			l.seen[nb] = l.stamp
			l.parent[nb] = cur
			queue = append(queue, nb)

			j := l.graph.DistancesIndex(nb)
			if j < 0 || j >= i || l.nodes[j] != nb {
				continue
			}
			// Reconstruct inner nodes by walking predecessors back to src.
			var path []searchgraph.ID
			for p := l.parent[nb]; p != src; p = l.parent[p] {
				path = append(path, p)
			}
			l.dist[i][j] = uint32(len(path) + 1)
			l.paths[i][j] = path
			remaining--
		}
	}
}

// Distance returns the shortest-path weight between indices i and j, or
// Unreachable.
func (l *Lookup) Distance(i, j int) uint32 {
	switch {
	case i == j:
		return 0
	case i < j:
		i, j = j, i
	}

	return l.dist[i][j]
}

// AreConnected reports whether a finite distance exists between i and j.
func (l *Lookup) AreConnected(i, j int) bool { return l.Distance(i, j) != Unreachable }

// ShortestPath returns the nodes strictly between i and j on the cached
// shortest path. The slice must not be modified.
func (l *Lookup) ShortestPath(i, j int) []searchgraph.ID {
	switch {
	case i == j:
		return nil
	case i < j:
		i, j = j, i
	}

	return l.paths[i][j]
}

func (l *Lookup) set(i, j int, d uint32, path []searchgraph.ID) {
	if i < j {
		i, j = j, i
	}
	l.dist[i][j] = d
	l.paths[i][j] = path
}

// MergeInto folds index x into index into after the node at x was merged
// into the node at into. For every other index i the entry (i, into) becomes
// the shorter of the old (i, x) and (i, into) paths, ignoring the nodes now
// owned by into (x itself and the x→into path).
//
// Row x keeps stale data until RemoveNodes compacts it away.
//
// Complexity: O(n · p) where p is the longest cached path.
func (l *Lookup) MergeInto(x, into int) {
	// 1. Nodes swallowed by the merge.
	owned := map[searchgraph.ID]struct{}{l.nodes[x]: {}}
	for _, id := range l.ShortestPath(x, into) {
		owned[id] = struct{}{}
	}
	filter := func(path []searchgraph.ID) []searchgraph.ID {
		out := make([]searchgraph.ID, 0, len(path))
		for _, id := range path {
			if _, ok := owned[id]; !ok {
				out = append(out, id)
			}
		}

		return out
	}

	// 2. Recompute every (i, into) entry.
	for i := range l.nodes {
		if i == x || i == into {
			continue
		}
		viaX, viaInto := l.AreConnected(i, x), l.AreConnected(i, into)
		var best []searchgraph.ID
		switch {
		case viaX && viaInto:
			a, b := filter(l.ShortestPath(i, x)), filter(l.ShortestPath(i, into))
			best = b
			if len(a) < len(b) {
				best = a
			}
		case viaX:
			best = filter(l.ShortestPath(i, x))
		case viaInto:
			best = filter(l.ShortestPath(i, into))
		default:
			continue
		}
		l.set(i, into, uint32(len(best)+1), best)
	}
}

// RemoveNodes compacts the cache, dropping every index for which remove
// returns true. Survivors keep their relative order and get new indices
// 0..k-1 written back into the graph; dropped nodes get -1. The surviving
// nodes are returned in new index order.
//
// Complexity: O(n²) for the triangle copy.
func (l *Lookup) RemoveNodes(remove func(index int) bool) []searchgraph.ID {
	// 1. Decide survivors and their new indices.
	mapping := make([]int, len(l.nodes))
	kept := make([]int, 0, len(l.nodes))
	for i := range l.nodes {
		if remove(i) {
			mapping[i] = -1
			continue
		}
		mapping[i] = len(kept)
		kept = append(kept, i)
	}

	// 2. Copy the surviving triangle.
	dist := make([][]uint32, len(kept))
	paths := make([][][]searchgraph.ID, len(kept))
	nodes := make([]searchgraph.ID, len(kept))
	for a, i := range kept {
		nodes[a] = l.nodes[i]
		dist[a] = make([]uint32, a)
		paths[a] = make([][]searchgraph.ID, a)
		for b := 0; b < a; b++ {
			dist[a][b] = l.dist[i][kept[b]]
			paths[a][b] = l.paths[i][kept[b]]
		}
	}

	// 3. Rewrite graph indices.
	for i, n := range l.nodes {
		if mapping[i] < 0 && l.graph.DistancesIndex(n) == i {
			l.graph.SetDistancesIndex(n, -1)
		}
	}
	for a, n := range nodes {
		l.graph.SetDistancesIndex(n, a)
	}
	l.nodes, l.dist, l.paths = nodes, dist, paths

	return l.Nodes()
}
