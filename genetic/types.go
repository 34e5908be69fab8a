// Package genetic defines parameters, lifecycle states and sentinel errors
// for a generational genetic algorithm over fixed-length bit strings.
package genetic

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrInvalidParameters indicates that Parameters.Validate failed.
	ErrInvalidParameters = errors.New("genetic: invalid parameters")

	// ErrNilFitness indicates that New was called without a fitness function.
	ErrNilFitness = errors.New("genetic: nil fitness function")

	// ErrInvalidState indicates a lifecycle call out of order, e.g. Step
	// before Initialize or after Done.
	ErrInvalidState = errors.New("genetic: invalid state")
)

// FitnessFunc scores a DNA string; higher is better. It is called from
// several goroutines at once and must not modify dna.
type FitnessFunc func(dna *bitset.BitSet) float64

// State is the lifecycle position of a Solver.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Evolving
	Finalizing
	Done
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Evolving:
		return "evolving"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Parameters tunes the algorithm.
type Parameters struct {
	// PopulationSize is the number of individuals per generation (≥ 2).
	PopulationSize int
	// Generations is the number of breeding rounds (≥ 0).
	Generations int
	// DNALength is the number of bits per individual (≥ 1).
	DNALength int
	// MaxMutateClusterSize bounds the run of consecutive bits one mutation
	// flips (≥ 1).
	MaxMutateClusterSize int
	// MutationRate is the probability a child is mutated, in [0,1].
	MutationRate float64
	// CrossoverRate is the probability a child mixes two parents, in [0,1].
	CrossoverRate float64
	// TournamentSize is the number of contestants per selection, in [1, PopulationSize].
	TournamentSize int
	// Elites survive unchanged into the next generation, in [0, PopulationSize).
	Elites int
	// InitialDensity is the probability a bit is set in a random individual, in [0,1].
	InitialDensity float64
	// Workers bounds concurrent fitness evaluations (≥ 1).
	Workers int
	// HillClimb enables the final local search over the best individual.
	HillClimb bool
	// MaxHillClimbSweeps caps full sweeps of the local search; 0 means until
	// no move improves.
	MaxHillClimbSweeps int
	// Seed feeds the random source; 0 selects a fixed default.
	Seed int64
}

// DefaultParameters returns the tuning used for dnaLength bits: a population
// of 7 per bit (at least 20), 200 generations, clusters of up to 4 bits.
func DefaultParameters(dnaLength int) Parameters {
	return Parameters{
		PopulationSize:       max(20, 7*dnaLength),
		Generations:          200,
		DNALength:            dnaLength,
		MaxMutateClusterSize: 4,
		MutationRate:         0.3,
		CrossoverRate:        0.8,
		TournamentSize:       3,
		Elites:               2,
		InitialDensity:       0.5,
		Workers:              4,
		HillClimb:            true,
	}
}

// Validate checks every field against its documented range.
func (p Parameters) Validate() error {
	switch {
	case p.PopulationSize < 2:
		return fmt.Errorf("PopulationSize=%d < 2: %w", p.PopulationSize, ErrInvalidParameters)
	case p.Generations < 0:
		return fmt.Errorf("Generations=%d < 0: %w", p.Generations, ErrInvalidParameters)
	case p.DNALength < 1:
		return fmt.Errorf("DNALength=%d < 1: %w", p.DNALength, ErrInvalidParameters)
	case p.MaxMutateClusterSize < 1:
		return fmt.Errorf("MaxMutateClusterSize=%d < 1: %w", p.MaxMutateClusterSize, ErrInvalidParameters)
	case p.MutationRate < 0 || p.MutationRate > 1:
		return fmt.Errorf("MutationRate=%g: %w", p.MutationRate, ErrInvalidParameters)
	case p.CrossoverRate < 0 || p.CrossoverRate > 1:
		return fmt.Errorf("CrossoverRate=%g: %w", p.CrossoverRate, ErrInvalidParameters)
	case p.TournamentSize < 1 || p.TournamentSize > p.PopulationSize:
		return fmt.Errorf("TournamentSize=%d: %w", p.TournamentSize, ErrInvalidParameters)
	case p.Elites < 0 || p.Elites >= p.PopulationSize:
		return fmt.Errorf("Elites=%d: %w", p.Elites, ErrInvalidParameters)
	case p.InitialDensity < 0 || p.InitialDensity > 1:
		return fmt.Errorf("InitialDensity=%g: %w", p.InitialDensity, ErrInvalidParameters)
	case p.Workers < 1:
		return fmt.Errorf("Workers=%d < 1: %w", p.Workers, ErrInvalidParameters)
	case p.MaxHillClimbSweeps < 0:
		return fmt.Errorf("MaxHillClimbSweeps=%d < 0: %w", p.MaxHillClimbSweeps, ErrInvalidParameters)
	}

	return nil
}

// Individual is one candidate. Its DNA is never modified once scored.
type Individual struct {
	DNA     *bitset.BitSet
	Fitness float64
}

// Stats summarises one evaluated generation.
type Stats struct {
	Generation  int
	Best        float64 // best fitness seen so far, across generations
	Mean        float64 // of this generation
	StdDev      float64 // of this generation
	Evaluations uint64  // fitness function calls so far
	CacheHits   uint64
}
