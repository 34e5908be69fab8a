package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/treeplan/edgeset"
	"github.com/katalvlaran/treeplan/genetic"
	"github.com/katalvlaran/treeplan/metrics"
	"github.com/katalvlaran/treeplan/mst"
	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/steiner"
)

// Session runs one planning request against one tree. A Session is not safe
// for concurrent use; create one per request.
type Session struct {
	id       string
	tree     *skilltree.Tree
	settings Settings
	strategy Strategy
	log      logrus.FieldLogger
	metrics  *metrics.Collectors

	space *searchSpace
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger; entries carry the session id.
func WithLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records reduction, search and plan metrics into c.
func WithMetrics(c *metrics.Collectors) SessionOption {
	return func(s *Session) { s.metrics = c }
}

// NewSession validates settings against tree.
func NewSession(tree *skilltree.Tree, settings Settings, strategy Strategy, opts ...SessionOption) (*Session, error) {
	if tree == nil || strategy == nil {
		return nil, fmt.Errorf("NewSession: nil tree or strategy: %w", ErrInvalidSettings)
	}
	if err := settings.Validate(tree); err != nil {
		return nil, fmt.Errorf("NewSession: %w", err)
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		id:       uuid.NewString(),
		tree:     tree,
		settings: settings,
		strategy: strategy,
		log:      discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("session", s.id)

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Reduce builds the search graph and runs the reductions on it. The
// returned result refers to the session's search graph; see Graph.
func (s *Session) Reduce(ctx context.Context) (*steiner.Result, error) {
	space, err := buildSearchSpace(s.tree, s.settings, s.strategy)
	if err != nil {
		return nil, err
	}
	s.space = space
	s.log.WithFields(logrus.Fields{
		"nodes":    len(space.graph.Nodes()),
		"fixed":    len(space.fixed),
		"variable": len(space.variable),
	}).Debug("search graph built")

	pre, err := steiner.NewPreprocessor(space.graph, space.fixed, space.variable)
	if err != nil {
		return nil, fmt.Errorf("Reduce: %w", err)
	}
	res, err := pre.Reduce(ctx)
	if err != nil {
		return nil, fmt.Errorf("Reduce: %w", err)
	}

	fields := logrus.Fields{"candidates": res.Stats.Candidates, "final": res.Stats.Final}
	for _, r := range steiner.Rules() {
		fields[r.String()] = res.Stats.Count(r)
	}
	s.log.WithFields(fields).Info("search space reduced")
	s.metrics.ObserveReduction(res.Stats)

	return res, nil
}

// Graph returns the search graph of the last Reduce, or nil.
func (s *Session) Graph() *searchgraph.Graph {
	if s.space == nil {
		return nil
	}

	return s.space.graph
}

// Run plans the tree.
//
// Steps:
//  1. Build and reduce the search space.
//  2. Report the raw ids of the fixed targets to the strategy.
//  3. Without free nodes span the remaining fixed targets and return that
//     tree (or the least solution, if better) with ErrNoImprovement.
//  4. Evolve bit strings over the free nodes; bit i selects Free()[i]. A
//     candidate is scored by spanning fixed ∪ selected on the metric
//     closure and passing its raw ids to Strategy.Fitness. The empty bit
//     string is seeded so the search starts from the least solution.
//  5. Keep the better of the search result and the least solution.
//
// On context cancellation during the search, the best tree found so far is
// returned together with ctx.Err().
func (s *Session) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	res, err := s.run(ctx)
	switch {
	case err == nil:
		s.metrics.ObservePlan(metrics.OutcomeSolved, time.Since(started))
	case errors.Is(err, ErrNoImprovement):
		s.metrics.ObservePlan(metrics.OutcomeNoImprovement, time.Since(started))
	default:
		s.metrics.ObservePlan(metrics.OutcomeFailed, time.Since(started))
		s.log.WithError(err).Warn("planning failed")
	}

	return res, err
}

func (s *Session) run(ctx context.Context) (*Result, error) {
	// 1. Reduce.
	red, err := s.Reduce(ctx)
	if err != nil {
		return nil, err
	}
	g := s.space.graph

	// 2. Fixed raw ids.
	fixedIdx, free := red.FixedTargets(), red.Free()
	fixedRaw := skilltree.NewNodeSet()
	for _, i := range fixedIdx {
		fixedRaw.Add(g.Raw(red.Lookup.IndexedNode(i))...)
	}
	s.strategy.SearchSpaceReady(fixedRaw)

	least := red.LeastSolution.Sorted()
	out := &Result{
		SessionID:     s.id,
		LeastSolution: least,
		SearchSpace:   len(red.SearchSpace),
		Reduction:     red.Stats,
	}

	// 3. Nothing to search: span the fixed targets that are left.
	ev := newEvaluator(s.tree, g, red, fixedIdx, free, s.strategy)
	if len(free) == 0 {
		used, err := s.preferLeast(ev, bitset.New(0), red.LeastSolution)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		s.finish(out, used)
		s.log.WithField("fitness", out.Fitness).Info("no free nodes, search skipped")

		return out, ErrNoImprovement
	}

	// 4. Genetic search.
	params := s.settings.Search.parameters(len(free))
	ga, err := genetic.New(params, ev.fitness,
		genetic.WithLogger(s.log),
		genetic.WithOnGeneration(s.metrics.ObserveGeneration),
	)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"dna":         params.DNALength,
		"population":  params.PopulationSize,
		"generations": params.Generations,
	}).Debug("genetic search started")

	best, runErr := ga.Run(ctx, bitset.New(uint(len(free))))
	out.Generations = ga.Generation()
	out.Evaluations = ga.Evaluations()
	out.CacheHits = ga.CacheHits()
	s.metrics.ObserveSearch(out.Evaluations, out.CacheHits)
	if best.DNA == nil {
		return nil, fmt.Errorf("Run: %w", runErr)
	}

	// 5. Compare with the least solution.
	used, err := s.preferLeast(ev, best.DNA, red.LeastSolution)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	s.finish(out, used)
	s.log.WithFields(logrus.Fields{
		"fitness":     out.Fitness,
		"points":      out.UsedPoints,
		"evaluations": out.Evaluations,
		"cache_hits":  out.CacheHits,
	}).Info("plan complete")

	if runErr != nil {
		return out, runErr
	}

	return out, nil
}

// preferLeast expands dna and returns it, or least when that scores higher.
func (s *Session) preferLeast(ev *evaluator, dna *bitset.BitSet, least skilltree.NodeSet) (skilltree.NodeSet, error) {
	used := skilltree.NewNodeSet()
	if err := ev.expand(dna, used); err != nil {
		return nil, err
	}
	if s.strategy.Fitness(used) < s.strategy.Fitness(least) {
		return least, nil
	}

	return used, nil
}

// finish fills the tree-dependent fields of out from used.
func (s *Session) finish(out *Result, used skilltree.NodeSet) {
	out.Nodes = used.Sorted()
	out.Fitness = s.strategy.Fitness(used)
	out.UsedPoints = usedPoints(s.tree, used)
	if rep, ok := s.strategy.(Reporter); ok {
		out.Unsatisfied = rep.Unsatisfied(used)
	}
}

// evaluator turns bit strings over the free indices into raw node sets.
// Safe for concurrent use.
type evaluator struct {
	tree     *skilltree.Tree
	graph    *searchgraph.Graph
	lookup   mst.PathMetric
	start    int
	fixed    []int
	free     []int
	strategy Strategy
	pool     *skilltree.SetPool

	all        []int
	sortedOnce sync.Once
	sorted     []edgeset.Edge
}

func newEvaluator(tree *skilltree.Tree, g *searchgraph.Graph, red *steiner.Result, fixed, free []int, strategy Strategy) *evaluator {
	all := make([]int, 0, len(fixed)+len(free))
	all = append(append(all, fixed...), free...)

	return &evaluator{
		tree:     tree,
		graph:    g,
		lookup:   red.Lookup,
		start:    red.Start,
		fixed:    fixed,
		free:     free,
		strategy: strategy,
		pool:     skilltree.NewSetPool(tree.Len()),
		all:      all,
	}
}

// span returns the spanning tree of fixed ∪ selected. Prim costs O(k² log k)
// per call; once k² exceeds half of n² the shared sorted edge list makes
// Kruskal cheaper.
func (e *evaluator) span(dna *bitset.BitSet) (*mst.Tree, error) {
	terminals := make([]int, len(e.fixed), len(e.fixed)+int(dna.Count()))
	copy(terminals, e.fixed)
	for i, ok := dna.NextSet(0); ok && int(i) < len(e.free); i, ok = dna.NextSet(i + 1) {
		terminals = append(terminals, e.free[i])
	}

	t := mst.New(e.lookup, terminals)
	k, n := len(terminals), len(e.all)
	if 2*k*k > n*n {
		e.sortedOnce.Do(func() { e.sorted = mst.SortedEdges(e.lookup, e.all) })
		return t, t.SpanSorted(e.sorted)
	}

	return t, t.Span(e.start)
}

// expand adds the raw ids of dna's tree to into.
func (e *evaluator) expand(dna *bitset.BitSet, into skilltree.NodeSet) error {
	t, err := e.span(dna)
	if err != nil {
		return err
	}

	return t.UsedNodes(e.graph, into)
}

// fitness scores dna; trees that cannot be spanned score 0.
func (e *evaluator) fitness(dna *bitset.BitSet) float64 {
	used := e.pool.Get()
	defer e.pool.Put(used)
	if err := e.expand(dna, used); err != nil {
		return 0
	}

	return e.strategy.Fitness(used)
}
