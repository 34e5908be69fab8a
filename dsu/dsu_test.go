package dsu_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/treeplan/dsu"
	"github.com/stretchr/testify/assert"
)

func TestDisjointSet_UnionFind(t *testing.T) {
	d := dsu.New(6)
	assert.Equal(t, 6, d.Sets())
	assert.Equal(t, 6, d.Len())

	assert.True(t, d.Union(0, 1))
	assert.True(t, d.Union(2, 3))
	assert.True(t, d.Union(1, 3))
	assert.False(t, d.Union(0, 2), "already joined through 1-3")

	assert.True(t, d.Connected(0, 3))
	assert.False(t, d.Connected(0, 4))
	assert.Equal(t, 3, d.Sets())
	assert.Equal(t, d.Find(0), d.Find(2))
}

func TestDisjointSet_LongChain(t *testing.T) {
	const n = 1000
	d := dsu.New(n)
	for i := 1; i < n; i++ {
		d.Union(i-1, i)
	}
	assert.Equal(t, 1, d.Sets())
	root := d.Find(0)
	for i := 0; i < n; i++ {
		assert.Equal(t, root, d.Find(i))
	}
}

func ExampleDisjointSet() {
	d := dsu.New(4)
	d.Union(0, 1)
	d.Union(2, 3)
	fmt.Println(d.Sets(), d.Connected(1, 0), d.Connected(1, 2))
	// Output: 2 true false
}
