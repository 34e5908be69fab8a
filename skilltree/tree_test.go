package skilltree_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangle returns a 3-node cycle 1-2-3 with a root at 1.
func triangle() []skilltree.Node {
	return []skilltree.Node{
		{ID: 1, Kind: skilltree.KindRoot, Group: 0, Neighbors: []skilltree.NodeID{2, 3}},
		{ID: 2, Group: 1, Neighbors: []skilltree.NodeID{3, 1}, Attributes: map[string][]float64{"+# to Strength": {10}}},
		{ID: 3, Group: 1, Neighbors: []skilltree.NodeID{1, 2, 2}, Attributes: map[string][]float64{"+#% increased Life": {5}}},
	}
}

func TestNew_Valid(t *testing.T) {
	tree, err := skilltree.New(triangle())
	require.NoError(t, err)

	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, []skilltree.NodeID{1, 2, 3}, tree.IDs())
	assert.Equal(t, []skilltree.NodeID{1, 2}, tree.Neighbors(3), "neighbours sorted and deduplicated")
	assert.Equal(t, []string{"+# to Strength", "+#% increased Life"}, tree.AttributeNames())

	n, ok := tree.Node(1)
	require.True(t, ok)
	assert.True(t, n.IsRoot())
	assert.False(t, n.IsKeystone())

	groups := tree.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, skilltree.Group{ID: 0, Nodes: []skilltree.NodeID{1}}, groups[0])
	assert.Equal(t, skilltree.Group{ID: 1, Nodes: []skilltree.NodeID{2, 3}}, groups[1])

	assert.NoError(t, tree.Validate(1, 2, 3))
	assert.ErrorIs(t, tree.Validate(4), skilltree.ErrUnknownNode)
}

func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name  string
		nodes []skilltree.Node
		want  error
	}{
		{"empty", nil, skilltree.ErrEmptyTree},
		{"duplicate", []skilltree.Node{{ID: 1}, {ID: 1}}, skilltree.ErrDuplicateNode},
		{"self loop", []skilltree.Node{{ID: 1, Neighbors: []skilltree.NodeID{1}}}, skilltree.ErrSelfLoop},
		{"unknown neighbour", []skilltree.Node{{ID: 1, Neighbors: []skilltree.NodeID{2}}}, skilltree.ErrUnknownNode},
		{"asymmetric", []skilltree.Node{{ID: 1, Neighbors: []skilltree.NodeID{2}}, {ID: 2}}, skilltree.ErrAsymmetricAdjacency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := skilltree.New(tc.nodes)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	nodes := triangle()
	tree, err := skilltree.New(nodes)
	require.NoError(t, err)

	nodes[1].Attributes["+# to Strength"][0] = 99
	nodes[0].Neighbors[0] = 42

	n, _ := tree.Node(2)
	assert.Equal(t, []float64{10}, n.Attributes["+# to Strength"])
	assert.Equal(t, []skilltree.NodeID{2, 3}, tree.Neighbors(1))
}

func TestParseKind(t *testing.T) {
	k, err := skilltree.ParseKind("Keystone")
	require.NoError(t, err)
	assert.Equal(t, skilltree.KindKeystone, k)

	k, err = skilltree.ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, skilltree.KindNormal, k)

	_, err = skilltree.ParseKind("jewel")
	assert.ErrorIs(t, err, skilltree.ErrUnknownKind)
	assert.Equal(t, "mastery", skilltree.KindMastery.String())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tree, err := skilltree.New(triangle())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tree.Encode(&buf))
	assert.Contains(t, buf.String(), "kind: root")

	back, err := skilltree.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, tree.IDs(), back.IDs())
	for _, id := range tree.IDs() {
		a, _ := tree.Node(id)
		b, _ := back.Node(id)
		assert.Equal(t, a, b)
	}
}

func TestDecode_JSONAndErrors(t *testing.T) {
	doc := `{"nodes":[{"id":1,"group":0,"neighbors":[2]},{"id":2,"group":0,"kind":"notable","neighbors":[1]}]}`
	tree, err := skilltree.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	n, _ := tree.Node(2)
	assert.Equal(t, skilltree.KindNotable, n.Kind)

	_, err = skilltree.Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, skilltree.ErrEmptyTree)

	_, err = skilltree.Decode(strings.NewReader(`{"nodes":[{"id":1,"kind":"socket"}]}`))
	assert.ErrorIs(t, err, skilltree.ErrUnknownKind)
}

func TestNodeSetAndPool(t *testing.T) {
	s := skilltree.NewNodeSet(3, 1)
	s.Add(2, 3)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(2))
	assert.Equal(t, []skilltree.NodeID{1, 2, 3}, s.Sorted())

	s.Union(skilltree.NewNodeSet(7))
	assert.True(t, s.Has(7))

	pool := skilltree.NewSetPool(8)
	a := pool.Get()
	a.Add(5)
	pool.Put(a)
	b := pool.Get()
	assert.Equal(t, 0, b.Len(), "pooled sets come back empty")
	pool.Put(nil)
}
