package genetic

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Solver evolves a population of bit strings towards higher fitness.
//
// Lifecycle: Uninitialized → Initialize → Initialized → Step... → Evolving
// → (generation budget spent) → Finalizing → Run's hill-climb → Done.
//
// Determinism: with equal parameters, seed and fitness function the sequence
// of populations is identical regardless of Workers, since random draws only
// happen in the serial breeding phase.
//
// Concurrency: a Solver is driven by one goroutine; only fitness evaluation
// fans out.
type Solver struct {
	params  Parameters
	fitness FitnessFunc
	log     logrus.FieldLogger
	onGen   func(Stats)

	rng        *rand.Rand
	cache      *fitnessCache
	state      State
	generation int
	population []Individual
	best       Individual

	evaluations atomic.Uint64
	hits        atomic.Uint64
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger for per-generation debug entries.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOnGeneration registers fn to receive the stats of every evaluated
// generation, the initial one included.
func WithOnGeneration(fn func(Stats)) Option {
	return func(s *Solver) { s.onGen = fn }
}

// New validates params and returns an uninitialised solver.
func New(params Parameters, fitness FitnessFunc, opts ...Option) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if fitness == nil {
		return nil, ErrNilFitness
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Solver{
		params:  params,
		fitness: fitness,
		log:     discard,
		rng:     rngFromSeed(params.Seed),
		cache:   newFitnessCache(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// State returns the lifecycle state.
func (s *Solver) State() State { return s.state }

// Generation returns the number of completed breeding rounds.
func (s *Solver) Generation() int { return s.generation }

// Best returns the fittest individual seen so far.
func (s *Solver) Best() Individual { return s.best }

// Population returns the current generation ordered by descending fitness.
func (s *Solver) Population() []Individual { return s.population }

// Evaluations returns the number of fitness function calls.
func (s *Solver) Evaluations() uint64 { return s.evaluations.Load() }

// CacheHits returns the number of evaluations answered from the cache.
func (s *Solver) CacheHits() uint64 { return s.hits.Load() }

// Initialize builds and scores the first population: seeds (clipped to
// DNALength) first, random individuals after.
func (s *Solver) Initialize(ctx context.Context, seeds ...*bitset.BitSet) error {
	if s.state != Uninitialized {
		return fmt.Errorf("Initialize in state %s: %w", s.state, ErrInvalidState)
	}
	n := s.params.DNALength
	pop := make([]Individual, 0, s.params.PopulationSize)
	for _, seed := range seeds {
		if seed == nil || len(pop) == s.params.PopulationSize {
			continue
		}
		dna := bitset.New(uint(n))
		for i, ok := seed.NextSet(0); ok && i < uint(n); i, ok = seed.NextSet(i + 1) {
			dna.Set(i)
		}
		pop = append(pop, Individual{DNA: dna})
	}
	for len(pop) < s.params.PopulationSize {
		pop = append(pop, Individual{DNA: randomDNA(s.rng, n, s.params.InitialDensity)})
	}

	if err := s.evaluate(ctx, pop); err != nil {
		return err
	}
	s.population = pop
	s.state = Initialized
	s.report()
	if s.params.Generations == 0 {
		s.state = Finalizing
	}

	return nil
}

// Step breeds, scores and ranks one generation.
//
// Steps:
//  1. Copy the Elites fittest individuals unchanged.
//  2. Fill up with children: two tournament winners, two-point crossover
//     with probability CrossoverRate, cluster mutation with MutationRate.
//  3. Score the new generation concurrently (cached by bit pattern).
//  4. Rank by fitness and update the best individual.
func (s *Solver) Step(ctx context.Context) error {
	if s.state != Initialized && s.state != Evolving {
		return fmt.Errorf("Step in state %s: %w", s.state, ErrInvalidState)
	}
	s.state = Evolving

	// 1. Elitism.
	next := make([]Individual, 0, s.params.PopulationSize)
	for i := 0; i < s.params.Elites; i++ {
		next = append(next, s.population[i])
	}

	// 2. Children.
	for len(next) < s.params.PopulationSize {
		a := s.population[s.tournament()]
		child := a.DNA.Clone()
		if s.rng.Float64() < s.params.CrossoverRate {
			b := s.population[s.tournament()]
			s.crossover(child, b.DNA)
		}
		if s.rng.Float64() < s.params.MutationRate {
			s.mutate(child)
		}
		next = append(next, Individual{DNA: child})
	}

	// 3-4. Score and rank.
	if err := s.evaluate(ctx, next[s.params.Elites:]); err != nil {
		return err
	}
	s.population = next
	s.generation++
	s.report()
	if s.generation >= s.params.Generations {
		s.state = Finalizing
	}

	return nil
}

// Run drives the solver to Done: it initialises when needed, evolves for
// the remaining generations, hill-climbs if enabled and returns the best
// individual. On cancellation the best individual so far is returned with
// ctx.Err().
func (s *Solver) Run(ctx context.Context, seeds ...*bitset.BitSet) (Individual, error) {
	if s.state == Uninitialized {
		if err := s.Initialize(ctx, seeds...); err != nil {
			return s.best, err
		}
	}
	for s.state == Initialized || s.state == Evolving {
		if err := ctx.Err(); err != nil {
			return s.best, err
		}
		if err := s.Step(ctx); err != nil {
			return s.best, err
		}
	}
	if s.state == Finalizing {
		if s.params.HillClimb {
			if err := s.hillClimb(ctx); err != nil {
				return s.best, err
			}
		}
		s.state = Done
	}

	return s.best, nil
}

// tournament returns the index of the winner among TournamentSize random
// picks. The population is ranked, so the smallest index wins.
func (s *Solver) tournament() int {
	winner := len(s.population)
	for i := 0; i < s.params.TournamentSize; i++ {
		winner = min(winner, s.rng.Intn(len(s.population)))
	}

	return winner
}

// crossover copies other's bits in a random window [lo, hi) into child.
func (s *Solver) crossover(child, other *bitset.BitSet) {
	n := s.params.DNALength
	lo, hi := s.rng.Intn(n+1), s.rng.Intn(n+1)
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i < hi; i++ {
		child.SetTo(uint(i), other.Test(uint(i)))
	}
}

// mutate flips a run of 1..MaxMutateClusterSize consecutive bits. Adjacent
// bits tend to be neighbouring nodes, so clusters toggle together.
func (s *Solver) mutate(dna *bitset.BitSet) {
	n := s.params.DNALength
	flipCluster(dna, n, s.rng.Intn(n), 1+s.rng.Intn(s.params.MaxMutateClusterSize))
}

// evaluate scores pop in place with at most Workers concurrent calls.
func (s *Solver) evaluate(ctx context.Context, pop []Individual) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Workers)
	for i := range pop {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pop[i].Fitness = s.score(pop[i].DNA)
			return nil
		})
	}

	return g.Wait()
}

// score returns the cached fitness of dna, computing it on a miss.
func (s *Solver) score(dna *bitset.BitSet) float64 {
	key := dnaKey(dna)
	if v, ok := s.cache.get(key); ok {
		s.hits.Add(1)
		return v
	}
	v := s.fitness(dna)
	s.evaluations.Add(1)
	s.cache.put(key, v)

	return v
}

// report ranks the population, tracks the best individual, logs and calls
// the generation hook.
func (s *Solver) report() {
	slices.SortStableFunc(s.population, func(a, b Individual) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		default:
			return 0
		}
	})
	if top := s.population[0]; top.Fitness > s.best.Fitness || s.best.DNA == nil {
		s.best = cloneIndividual(top)
	}

	values := make([]float64, len(s.population))
	for i, ind := range s.population {
		values[i] = ind.Fitness
	}
	mean, std := stat.MeanStdDev(values, nil)
	st := Stats{
		Generation:  s.generation,
		Best:        s.best.Fitness,
		Mean:        mean,
		StdDev:      std,
		Evaluations: s.Evaluations(),
		CacheHits:   s.CacheHits(),
	}
	s.log.WithFields(logrus.Fields{
		"generation": st.Generation,
		"best":       st.Best,
		"mean":       st.Mean,
		"stddev":     st.StdDev,
		"cached":     s.cache.len(),
	}).Debug("generation evaluated")
	if s.onGen != nil {
		s.onGen(st)
	}
}

// hillClimb runs first-improvement local search from the best individual:
// every sweep tries flipping each run of 1..MaxMutateClusterSize bits in
// index order and keeps any strictly better result. Sweeps repeat until one
// improves nothing or MaxHillClimbSweeps is reached.
func (s *Solver) hillClimb(ctx context.Context) error {
	n := s.params.DNALength
	cur := cloneIndividual(s.best)
	for sweep := 0; s.params.MaxHillClimbSweeps == 0 || sweep < s.params.MaxHillClimbSweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		improved := false
		for i := 0; i < n; i++ {
			for size := 1; size <= s.params.MaxMutateClusterSize && i+size <= n; size++ {
				flipCluster(cur.DNA, n, i, size)
				if f := s.score(cur.DNA); f > cur.Fitness {
					cur.Fitness = f
					improved = true
					break
				}
				flipCluster(cur.DNA, n, i, size)
			}
		}
		if !improved {
			break
		}
	}
	s.log.WithFields(logrus.Fields{
		"before": s.best.Fitness,
		"after":  cur.Fitness,
	}).Debug("hill climb finished")
	if cur.Fitness > s.best.Fitness {
		s.best = cur
	}

	return nil
}

func cloneIndividual(ind Individual) Individual {
	return Individual{DNA: ind.DNA.Clone(), Fitness: ind.Fitness}
}
