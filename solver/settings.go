package solver

import (
	"fmt"

	"github.com/katalvlaran/treeplan/genetic"
	"github.com/katalvlaran/treeplan/skilltree"
)

// Settings describes one planning request, independent of the strategy.
type Settings struct {
	// Start are the raw ids the tree grows from; they form one node.
	Start []skilltree.NodeID
	// Checked must be part of every solution.
	Checked []skilltree.NodeID
	// Crossed must never be part of a solution.
	Crossed []skilltree.NodeID
	// SubsetTree, when non-empty, restricts the search to these ids.
	SubsetTree []skilltree.NodeID
	// TotalPoints is the node budget.
	TotalPoints int
	// Search tunes the genetic algorithm.
	Search SearchSettings
}

// SearchSettings tunes the genetic search. Zero fields take the defaults of
// genetic.DefaultParameters, except PopulationMultiplier (default 7). Elitism
// can't be switched off: Elites == 0 selects the default of 2.
type SearchSettings struct {
	PopulationMultiplier float64
	Generations          int
	MaxMutateClusterSize int
	MutationRate         float64
	CrossoverRate        float64
	TournamentSize       int
	Elites               int
	Workers              int
	DisableHillClimb     bool
	MaxHillClimbSweeps   int
	Seed                 int64
}

const defaultPopulationMultiplier = 7

// Validate checks the request against tree.
func (s Settings) Validate(tree *skilltree.Tree) error {
	if len(s.Start) == 0 {
		return fmt.Errorf("no start nodes: %w", ErrInvalidSettings)
	}
	if s.TotalPoints <= 0 {
		return fmt.Errorf("TotalPoints=%d: %w", s.TotalPoints, ErrInvalidSettings)
	}
	for _, list := range [][]skilltree.NodeID{s.Start, s.Checked, s.Crossed, s.SubsetTree} {
		if err := tree.Validate(list...); err != nil {
			return fmt.Errorf("%w: %w", err, ErrInvalidSettings)
		}
	}
	crossed := skilltree.NewNodeSet(s.Crossed...)
	for _, id := range append(append([]skilltree.NodeID{}, s.Start...), s.Checked...) {
		if crossed.Has(id) {
			return fmt.Errorf("node %d is both required and crossed: %w", id, ErrInvalidSettings)
		}
	}
	if len(s.SubsetTree) > 0 {
		subset := skilltree.NewNodeSet(s.SubsetTree...)
		for _, id := range s.Checked {
			if !subset.Has(id) {
				return fmt.Errorf("checked node %d outside subset tree: %w", id, ErrInvalidSettings)
			}
		}
	}
	if s.Search.PopulationMultiplier < 0 {
		return fmt.Errorf("PopulationMultiplier=%g: %w", s.Search.PopulationMultiplier, ErrInvalidSettings)
	}

	return nil
}

// parameters resolves the genetic parameters for a DNA of n bits.
func (s SearchSettings) parameters(n int) genetic.Parameters {
	p := genetic.DefaultParameters(n)
	mult := s.PopulationMultiplier
	if mult == 0 {
		mult = defaultPopulationMultiplier
	}
	p.PopulationSize = int(mult * float64(n))
	if s.Generations > 0 {
		p.Generations = s.Generations
	}
	if s.MaxMutateClusterSize > 0 {
		p.MaxMutateClusterSize = s.MaxMutateClusterSize
	}
	if s.MutationRate > 0 {
		p.MutationRate = s.MutationRate
	}
	if s.CrossoverRate > 0 {
		p.CrossoverRate = s.CrossoverRate
	}
	if s.TournamentSize > 0 {
		p.TournamentSize = s.TournamentSize
	}
	if s.Elites > 0 {
		p.Elites = s.Elites
	}
	if s.Workers > 0 {
		p.Workers = s.Workers
	}
	p.PopulationSize = max(p.PopulationSize, p.TournamentSize, p.Elites+1)
	p.HillClimb = !s.DisableHillClimb
	p.MaxHillClimbSweeps = s.MaxHillClimbSweeps
	p.Seed = s.Seed

	return p
}
