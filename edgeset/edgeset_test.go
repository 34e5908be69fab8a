package edgeset_test

import (
	"slices"
	"testing"

	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdge_Normalises(t *testing.T) {
	a := edgeset.NewEdge(4, 1, 7)
	b := edgeset.NewEdge(1, 4, 7)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, a.N1)
	assert.Equal(t, 4, a.Other(1))
	assert.Equal(t, 1, a.Other(4))
	assert.True(t, a.Has(4))
	assert.False(t, a.Has(2))
	assert.Panics(t, func() { edgeset.NewEdge(2, 2, 1) })
}

func TestCompare(t *testing.T) {
	edges := []edgeset.Edge{
		edgeset.NewEdge(2, 3, 5),
		edgeset.NewEdge(0, 4, 1),
		edgeset.NewEdge(0, 2, 5),
		edgeset.NewEdge(1, 3, 1),
	}
	slices.SortFunc(edges, edgeset.Compare)
	assert.Equal(t, []edgeset.Edge{
		{N1: 0, N2: 4, Weight: 1},
		{N1: 1, N2: 3, Weight: 1},
		{N1: 0, N2: 2, Weight: 5},
		{N1: 2, N2: 3, Weight: 5},
	}, edges)
}

func TestSet_AddRemove(t *testing.T) {
	s := edgeset.New(5)
	assert.True(t, s.Add(0, 1, 3))
	assert.True(t, s.Add(2, 1, 1))
	assert.False(t, s.Add(1, 0, 4), "heavier parallel edge ignored")
	assert.True(t, s.Add(1, 0, 2), "lighter parallel edge replaces")
	assert.Equal(t, 2, s.Len())

	e, ok := s.Edge(1, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(2), e.Weight)

	assert.Equal(t, []int{0, 2}, s.NeighborsOf(1))
	assert.Equal(t, 2, s.Degree(1))
	assert.Equal(t, []edgeset.Edge{{N1: 0, N2: 1, Weight: 2}, {N1: 1, N2: 2, Weight: 1}}, s.EdgesOf(1))

	assert.True(t, s.Remove(0, 1))
	assert.False(t, s.Remove(0, 1))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Degree(0))

	s.Add(1, 3, 9)
	assert.Equal(t, []int{2, 3}, s.RemoveAll(1))
	assert.Equal(t, 0, s.Len())
}

func TestSet_Remap(t *testing.T) {
	s := edgeset.New(5)
	s.Add(0, 1, 1)
	s.Add(1, 3, 2)
	s.Add(3, 4, 3)
	s.Add(2, 4, 4)

	// Drop index 2, compact the rest.
	out := s.Remap([]int{0, 1, -1, 2, 3})
	assert.Equal(t, 4, out.Size())
	assert.Equal(t, []edgeset.Edge{
		{N1: 0, N2: 1, Weight: 1},
		{N1: 1, N2: 2, Weight: 2},
		{N1: 2, N2: 3, Weight: 3},
	}, out.Edges())
}
