package solver_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/katalvlaran/treeplan/metrics"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/solver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const life = "+# to maximum Life"

// ringTree is 0-1-2-3-4-0 with root 0.
func ringTree(t testing.TB) *skilltree.Tree {
	t.Helper()
	nodes := make([]skilltree.Node, 5)
	for i := range nodes {
		nodes[i] = skilltree.Node{
			ID:        skilltree.NodeID(i),
			Neighbors: []skilltree.NodeID{skilltree.NodeID((i + 1) % 5), skilltree.NodeID((i + 4) % 5)},
		}
	}
	nodes[0].Kind = skilltree.KindRoot
	tree, err := skilltree.New(nodes)
	require.NoError(t, err)

	return tree
}

// chainTree is root 0 with two arms: 0-1-2 (life 40, 60) and 0-3-4-5-6
// (life 150 at the end).
func chainTree(t testing.TB) *skilltree.Tree {
	t.Helper()
	adj := map[skilltree.NodeID][]skilltree.NodeID{
		0: {1, 3}, 1: {0, 2}, 2: {1},
		3: {0, 4}, 4: {3, 5}, 5: {4, 6}, 6: {5},
	}
	attrs := map[skilltree.NodeID]float64{1: 40, 2: 60, 6: 150}
	nodes := make([]skilltree.Node, 0, len(adj))
	for id := skilltree.NodeID(0); id < 7; id++ {
		n := skilltree.Node{ID: id, Neighbors: adj[id]}
		if v, ok := attrs[id]; ok {
			n.Attributes = map[string][]float64{life: {v}}
		}
		if id == 0 {
			n.Kind = skilltree.KindRoot
		}
		nodes = append(nodes, n)
	}
	tree, err := skilltree.New(nodes)
	require.NoError(t, err)

	return tree
}

func lifeStrategy(t testing.TB, tree *skilltree.Tree, points int) *solver.Advanced {
	t.Helper()
	a, err := solver.NewAdvanced(tree, points, solver.AdvancedSettings{
		Constraints: []solver.Constraint{{Attribute: life, Target: 100, Weight: 5, Minimum: true}},
	})
	require.NoError(t, err)

	return a
}

func fastSearch() solver.SearchSettings {
	return solver.SearchSettings{Generations: 10, Seed: 3, Workers: 2}
}

func TestSession_RingReturnsLeastSolution(t *testing.T) {
	tree := ringTree(t)
	a, err := solver.NewAdvanced(tree, 2, solver.AdvancedSettings{})
	require.NoError(t, err)

	s, err := solver.NewSession(tree, solver.Settings{
		Start:       []skilltree.NodeID{0},
		Checked:     []skilltree.NodeID{2},
		TotalPoints: 2,
		Search:      fastSearch(),
	}, a)
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.ErrorIs(t, err, solver.ErrNoImprovement)
	require.NotNil(t, res)
	assert.Equal(t, []skilltree.NodeID{0, 1, 2}, res.Nodes)
	assert.Equal(t, res.Nodes, res.LeastSolution)
	assert.Equal(t, 2, res.UsedPoints)
	assert.InDelta(t, 1.0, res.Fitness, 1e-12)
	assert.Equal(t, 1, res.SearchSpace)
	assert.Equal(t, s.ID(), res.SessionID)
	assert.Zero(t, res.Evaluations)
}

func TestSession_ChainPrefersCheapArm(t *testing.T) {
	tree := chainTree(t)
	reg := prometheus.NewRegistry()
	s, err := solver.NewSession(tree, solver.Settings{
		Start:       []skilltree.NodeID{0},
		TotalPoints: 3,
		Search:      fastSearch(),
	}, lifeStrategy(t, tree, 3), solver.WithMetrics(metrics.New(reg)))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []skilltree.NodeID{0, 1, 2}, res.Nodes)
	assert.Equal(t, 2, res.UsedPoints)
	assert.InDelta(t, 1+0.0005*math.Log(2), res.Fitness, 1e-12)
	assert.Empty(t, res.Unsatisfied)
	assert.Equal(t, []skilltree.NodeID{0}, res.LeastSolution)
	assert.Equal(t, 4, res.SearchSpace)
	assert.Equal(t, 10, res.Generations)
	assert.Positive(t, res.Evaluations)

	families, err := reg.Gather()
	require.NoError(t, err)
	var plans float64
	for _, f := range families {
		if f.GetName() == "treeplan_plans_total" {
			for _, m := range f.GetMetric() {
				plans += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, plans)
}

func TestSession_Deterministic(t *testing.T) {
	tree := chainTree(t)
	run := func(workers int) *solver.Result {
		search := fastSearch()
		search.Workers = workers
		s, err := solver.NewSession(tree, solver.Settings{
			Start:       []skilltree.NodeID{0},
			TotalPoints: 3,
			Search:      search,
		}, lifeStrategy(t, tree, 3))
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)

		return res
	}
	a, b := run(1), run(6)
	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Fitness, b.Fitness)
}

func TestSession_CrossedArmIsUnreachable(t *testing.T) {
	tree := chainTree(t)
	a := lifeStrategy(t, tree, 5)
	s, err := solver.NewSession(tree, solver.Settings{
		Start:       []skilltree.NodeID{0},
		Crossed:     []skilltree.NodeID{1},
		TotalPoints: 5,
		Search:      fastSearch(),
	}, a)
	require.NoError(t, err)

	// The start's only neighbour is N3, which is merged into it; nothing
	// remains to search. The least solution {0} lacks the merged stats and
	// must not be credited with them.
	res, err := s.Run(context.Background())
	require.ErrorIs(t, err, solver.ErrNoImprovement)
	assert.Equal(t, []skilltree.NodeID{0, 3, 4, 5, 6}, res.Nodes)
	assert.Equal(t, []skilltree.NodeID{0}, res.LeastSolution)
	assert.Equal(t, 4, res.UsedPoints)
	assert.InDelta(t, 1+0.0005*math.Log(2), res.Fitness, 1e-12)
	assert.Empty(t, res.Unsatisfied)

	assert.Equal(t, []float64{0}, a.Totals(skilltree.NewNodeSet(0)))
	assert.Equal(t, []string{life}, a.Unsatisfied(skilltree.NewNodeSet(0)))
	assert.Less(t, a.Fitness(skilltree.NewNodeSet(0)), res.Fitness)
}

func TestSession_Errors(t *testing.T) {
	tree := chainTree(t)
	a := lifeStrategy(t, tree, 3)

	_, err := solver.NewSession(tree, solver.Settings{Start: []skilltree.NodeID{0}, TotalPoints: 3}, nil)
	assert.ErrorIs(t, err, solver.ErrInvalidSettings)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := solver.NewSession(tree, solver.Settings{Start: []skilltree.NodeID{0}, TotalPoints: 3}, a)
	require.NoError(t, err)
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// Checked node behind a crossed one.
	s, err = solver.NewSession(tree, solver.Settings{
		Start:       []skilltree.NodeID{0},
		Checked:     []skilltree.NodeID{6},
		Crossed:     []skilltree.NodeID{4},
		TotalPoints: 3,
	}, a)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	tree := chainTree(t)
	valid := solver.Settings{Start: []skilltree.NodeID{0}, TotalPoints: 3}
	require.NoError(t, valid.Validate(tree))

	cases := []struct {
		name string
		mod  func(*solver.Settings)
		is   error
	}{
		{"no start", func(s *solver.Settings) { s.Start = nil }, nil},
		{"no points", func(s *solver.Settings) { s.TotalPoints = 0 }, nil},
		{"unknown", func(s *solver.Settings) { s.Checked = []skilltree.NodeID{99} }, skilltree.ErrUnknownNode},
		{"checked and crossed", func(s *solver.Settings) {
			s.Checked = []skilltree.NodeID{2}
			s.Crossed = []skilltree.NodeID{2}
		}, nil},
		{"outside subset", func(s *solver.Settings) {
			s.Checked = []skilltree.NodeID{6}
			s.SubsetTree = []skilltree.NodeID{0, 1, 2}
		}, nil},
		{"population", func(s *solver.Settings) { s.Search.PopulationMultiplier = -1 }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mod(&s)
			err := s.Validate(tree)
			require.ErrorIs(t, err, solver.ErrInvalidSettings)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestAdvanced_FitnessOrdering(t *testing.T) {
	tree := chainTree(t)
	a := lifeStrategy(t, tree, 3)
	a.SearchSpaceReady(skilltree.NewNodeSet(0))

	cheap := a.Fitness(skilltree.NewNodeSet(0, 1, 2))
	far := a.Fitness(skilltree.NewNodeSet(0, 3, 4, 5, 6))
	none := a.Fitness(skilltree.NewNodeSet(0))
	assert.Greater(t, cheap, far)
	assert.Greater(t, far, none)
	assert.Positive(t, none)

	assert.Empty(t, a.Unsatisfied(skilltree.NewNodeSet(0, 1, 2)))
	assert.Equal(t, []string{life}, a.Unsatisfied(skilltree.NewNodeSet(0, 1)))
	assert.Equal(t, []float64{40}, a.Totals(skilltree.NewNodeSet(0, 1)))
}

func TestAdvanced_FixedAndInitialAttributes(t *testing.T) {
	tree := chainTree(t)
	a, err := solver.NewAdvanced(tree, 3, solver.AdvancedSettings{
		Constraints:       []solver.Constraint{{Attribute: life, Target: 100, Weight: 1}},
		InitialAttributes: map[string]float64{life: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, a.Totals(skilltree.NewNodeSet()))

	a.SearchSpaceReady(skilltree.NewNodeSet(0, 1))
	assert.Equal(t, []float64{50}, a.Totals(skilltree.NewNodeSet(0, 1)))
	assert.Equal(t, []float64{110}, a.Totals(skilltree.NewNodeSet(0, 1, 2)))

	// Sets missing a fixed node only count what they hold.
	assert.Equal(t, []float64{10}, a.Totals(skilltree.NewNodeSet(0)))
	assert.Equal(t, []float64{70}, a.Totals(skilltree.NewNodeSet(0, 2)))

	// A second call replaces the first.
	a.SearchSpaceReady(skilltree.NewNodeSet(0))
	assert.Equal(t, []float64{50}, a.Totals(skilltree.NewNodeSet(0, 1)))
}

func TestAdvanced_PseudoWildcards(t *testing.T) {
	const (
		fire   = "#% increased Fire Damage"
		cold   = "#% increased Cold Damage"
		str    = "+# to Strength"
		strInt = "+# to Strength and Intelligence"
	)
	tree, err := skilltree.New([]skilltree.Node{
		{ID: 1, Neighbors: []skilltree.NodeID{2}, Attributes: map[string][]float64{fire: {10}}},
		{ID: 2, Neighbors: []skilltree.NodeID{1, 3}, Attributes: map[string][]float64{cold: {20}}},
		{ID: 3, Neighbors: []skilltree.NodeID{2, 4}, Attributes: map[string][]float64{str: {10}}},
		{ID: 4, Neighbors: []skilltree.NodeID{3}, Kind: skilltree.KindKeystone,
			Attributes: map[string][]float64{strInt: {8}}},
	})
	require.NoError(t, err)

	a, err := solver.NewAdvanced(tree, 10, solver.AdvancedSettings{
		Constraints: []solver.Constraint{{Attribute: "+# to {0}", Target: 50, Weight: 1}},
		PseudoConstraints: []solver.PseudoConstraint{{
			Name:   "fire or doubled cold",
			Target: 100,
			Weight: 1,
			Attributes: []solver.PseudoAttribute{
				{Name: "#% increased {0} Damage", Multiplier: 1, Condition: solver.GroupsEqual("Fire")},
				{Name: "#% increased {0} Damage", Multiplier: 2, Condition: solver.GroupsEqual("Cold")},
			},
		}},
	})
	require.NoError(t, err)

	all := skilltree.NewNodeSet(1, 2, 3, 4)
	assert.Equal(t, []float64{18, 50}, a.Totals(all))

	n3, _ := tree.Node(3)
	n4, _ := tree.Node(4)
	assert.True(t, a.IsTravel(3))
	assert.False(t, a.IsTravel(4))
	assert.False(t, a.MustIncludeNodeGroup(n3))
	assert.True(t, a.MustIncludeNodeGroup(n4))
	assert.False(t, a.IncludeNodeInSearchGraph(n4))
	assert.True(t, a.IncludeNodeInSearchGraph(n3))
}

func TestNewAdvanced_Invalid(t *testing.T) {
	tree := chainTree(t)
	cases := map[string]struct {
		points int
		s      solver.AdvancedSettings
	}{
		"points": {0, solver.AdvancedSettings{}},
		"target": {3, solver.AdvancedSettings{Constraints: []solver.Constraint{{Attribute: life, Weight: 1}}}},
		"weight": {3, solver.AdvancedSettings{Constraints: []solver.Constraint{{Attribute: life, Target: 1, Weight: -1}}}},
		"pseudo": {3, solver.AdvancedSettings{PseudoConstraints: []solver.PseudoConstraint{{Name: "x", Target: -2}}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := solver.NewAdvanced(tree, tc.points, tc.s)
			assert.True(t, errors.Is(err, solver.ErrInvalidSettings), "got %v", err)
		})
	}
}

func TestCSV(t *testing.T) {
	cases := []struct {
		name                 string
		x, weight, target, k float64
		want                 float64
	}{
		{"at target", 100, 5, 100, 10, 1},
		{"over target", 250, 5, 100, 10, 1},
		{"half", 50, 1, 100, 10, math.Exp(-5)},
		{"zero", 0, 1, 100, 10, math.Exp(-10)},
		{"zero weight", 0, 0, 100, 10, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, solver.CSV(tc.x, tc.weight, tc.target, tc.k), 1e-12)
		})
	}
}

func ExampleSession_Run() {
	lifeOf := func(v float64) map[string][]float64 { return map[string][]float64{"+# to maximum Life": {v}} }
	nodes := []skilltree.Node{
		{ID: 0, Kind: skilltree.KindRoot, Neighbors: []skilltree.NodeID{1, 3}},
		{ID: 1, Neighbors: []skilltree.NodeID{0, 2}, Attributes: lifeOf(40)},
		{ID: 2, Neighbors: []skilltree.NodeID{1}, Attributes: lifeOf(60)},
		{ID: 3, Neighbors: []skilltree.NodeID{0}, Attributes: lifeOf(30)},
	}
	tree, _ := skilltree.New(nodes)
	strategy, _ := solver.NewAdvanced(tree, 2, solver.AdvancedSettings{
		Constraints: []solver.Constraint{{Attribute: "+# to maximum Life", Target: 100, Weight: 1}},
	})
	s, _ := solver.NewSession(tree, solver.Settings{
		Start:       []skilltree.NodeID{0},
		TotalPoints: 2,
		Search:      solver.SearchSettings{Generations: 5, Seed: 1},
	}, strategy)

	res, err := s.Run(context.Background())
	fmt.Println(res.Nodes, res.UsedPoints, err)
	// Output: [0 1 2] 2 <nil>
}

func BenchmarkSession_Run(b *testing.B) {
	tree := chainTree(b)
	for i := 0; i < b.N; i++ {
		s, err := solver.NewSession(tree, solver.Settings{
			Start:       []skilltree.NodeID{0},
			TotalPoints: 3,
			Search:      fastSearch(),
		}, lifeStrategy(b, tree, 3))
		require.NoError(b, err)
		if _, err := s.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
