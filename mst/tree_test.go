package mst_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/katalvlaran/treeplan/builder"
	"github.com/katalvlaran/treeplan/distance"
	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/mst"
	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closure indexes every node of tree and returns the lookup.
func closure(t testing.TB, tree *skilltree.Tree) (*searchgraph.Graph, *distance.Lookup) {
	t.Helper()
	g := searchgraph.New(tree)
	ids := make([]searchgraph.ID, 0, tree.Len())
	for _, r := range tree.IDs() {
		id, err := g.AddNode(r)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	l := distance.New(g)
	l.CalculateFully(ids)

	return g, l
}

// pruferTrees enumerates every labelled tree on len(labels) vertices and
// returns its weight under m.
func pruferTrees(m mst.Metric, labels []int) []uint64 {
	k := len(labels)
	if k < 3 {
		return nil
	}
	var out []uint64
	seq := make([]int, k-2)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(seq) {
			degree := make([]int, k)
			for i := range degree {
				degree[i] = 1
			}
			for _, s := range seq {
				degree[s]++
			}
			var w uint64
			for _, s := range seq {
				for leaf := 0; leaf < k; leaf++ {
					if degree[leaf] == 1 {
						w += uint64(m.Distance(labels[leaf], labels[s]))
						degree[leaf]--
						degree[s]--
						break
					}
				}
			}
			var last []int
			for i := 0; i < k; i++ {
				if degree[i] == 1 {
					last = append(last, i)
				}
			}
			w += uint64(m.Distance(labels[last[0]], labels[last[1]]))
			out = append(out, w)
			return
		}
		for v := 0; v < k; v++ {
			seq[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)

	return out
}

func TestSpan_OptimalAgainstEveryTree(t *testing.T) {
	tree := builder.MustBuildTree([]builder.BuilderOption{builder.WithSeed(11)}, builder.RandomSparse(30, 0.05))
	_, l := closure(t, tree)
	terminals := []int{2, 7, 13, 21, 29}

	span := mst.New(l, terminals)
	require.NoError(t, span.Span(13))
	assert.Len(t, span.Edges(), len(terminals)-1)

	all := pruferTrees(l, terminals)
	require.Len(t, all, 125)
	for _, w := range all {
		assert.LessOrEqual(t, span.Weight(), w)
	}
	assert.Equal(t, slices.Min(all), span.Weight())
}

func TestSpan_PrimEqualsKruskal(t *testing.T) {
	tree := builder.MustBuildTree([]builder.BuilderOption{builder.WithSeed(5)}, builder.Clusters(6, 5))
	_, l := closure(t, tree)

	all := make([]int, l.CacheSize())
	for i := range all {
		all[i] = i
	}
	sorted := mst.SortedEdges(l, all)
	require.True(t, slices.IsSortedFunc(sorted, edgeset.Compare))

	for _, terminals := range [][]int{{0, 5}, {0, 9, 17, 30}, {1, 2, 3, 4, 20, 33, 39}} {
		prim := mst.New(l, terminals)
		require.NoError(t, prim.Span(terminals[0]))
		kruskal := mst.New(l, terminals)
		require.NoError(t, kruskal.SpanSorted(sorted))
		assert.Equal(t, prim.Weight(), kruskal.Weight(), "terminals %v", terminals)
	}
}

func TestSpan_RingUsedNodes(t *testing.T) {
	// 5-ring 0..4 with terminals 0 and 2: the short arc spends node 1.
	tree := builder.MustBuildTree(nil, builder.Cycle(5))
	g, l := closure(t, tree)

	span := mst.New(l, []int{0, 2})
	require.NoError(t, span.Span(0))
	assert.Equal(t, uint64(2), span.Weight())
	assert.Equal(t, uint32(2), span.MaxEdgeWeight())

	used := skilltree.NewNodeSet()
	require.NoError(t, span.UsedNodes(g, used))
	assert.Equal(t, []skilltree.NodeID{0, 1, 2}, used.Sorted())
}

func TestSpan_Errors(t *testing.T) {
	tree := builder.MustBuildTree(nil, builder.Path(3), builder.Path(2))
	g, l := closure(t, tree)

	span := mst.New(l, []int{0, 2, 3})
	assert.ErrorIs(t, span.Span(1), mst.ErrStartNotTerminal)
	assert.ErrorIs(t, span.Span(0), mst.ErrDisconnected)
	assert.False(t, span.IsSpanned())
	assert.ErrorIs(t, span.UsedNodes(g, skilltree.NewNodeSet()), mst.ErrNotSpanned)
	assert.ErrorIs(t, span.SpanSorted(mst.SortedEdges(l, []int{0, 1, 2, 3, 4})), mst.ErrDisconnected)

	single := mst.New(l, []int{4, 4})
	require.NoError(t, single.Span(4))
	assert.Equal(t, uint64(0), single.Weight())
	used := skilltree.NewNodeSet()
	require.NoError(t, single.UsedNodes(g, used))
	assert.Equal(t, []skilltree.NodeID{4}, used.Sorted())
}

func ExampleTree_Span() {
	tree := builder.MustBuildTree(nil, builder.Grid(3, 3))
	g := searchgraph.New(tree)
	var ids []searchgraph.ID
	for _, r := range tree.IDs() {
		id, _ := g.AddNode(r)
		ids = append(ids, id)
	}
	l := distance.New(g)
	l.CalculateFully(ids)

	// Corners of the 3x3 grid.
	span := mst.New(l, []int{0, 2, 6, 8})
	if err := span.Span(0); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(span.Weight(), len(span.Edges()))
	// Output: 6 3
}

func BenchmarkSpan_Prim(b *testing.B) {
	tree := builder.MustBuildTree([]builder.BuilderOption{builder.WithSeed(2)}, builder.Clusters(15, 6))
	_, l := closure(b, tree)
	terminals := make([]int, 0, l.CacheSize()/3)
	for i := 0; i < l.CacheSize(); i += 3 {
		terminals = append(terminals, i)
	}
	span := mst.New(l, terminals)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = span.Span(terminals[0])
	}
}

func BenchmarkSpan_Kruskal(b *testing.B) {
	tree := builder.MustBuildTree([]builder.BuilderOption{builder.WithSeed(2)}, builder.Clusters(15, 6))
	_, l := closure(b, tree)
	all := make([]int, l.CacheSize())
	for i := range all {
		all[i] = i
	}
	sorted := mst.SortedEdges(l, all)
	terminals := make([]int, 0, l.CacheSize()/3)
	for i := 0; i < l.CacheSize(); i += 3 {
		terminals = append(terminals, i)
	}
	span := mst.New(l, terminals)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = span.SpanSorted(sorted)
	}
}
