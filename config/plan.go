package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/solver"
)

// Plan is a planning request file. Tree is resolved relative to the plan
// file's directory.
type Plan struct {
	Tree              string                 `yaml:"tree" json:"tree"`
	TotalPoints       int                    `yaml:"total_points" json:"total_points"`
	Start             []skilltree.NodeID     `yaml:"start,flow" json:"start"`
	Checked           []skilltree.NodeID     `yaml:"checked,flow" json:"checked"`
	Crossed           []skilltree.NodeID     `yaml:"crossed,flow" json:"crossed"`
	Subset            []skilltree.NodeID     `yaml:"subset,flow" json:"subset"`
	Constraints       []ConstraintSpec       `yaml:"constraints" json:"constraints"`
	PseudoConstraints []PseudoConstraintSpec `yaml:"pseudo_constraints" json:"pseudo_constraints"`
	InitialAttributes map[string]float64     `yaml:"initial_attributes" json:"initial_attributes"`
}

// ConstraintSpec is the file form of solver.Constraint.
type ConstraintSpec struct {
	Attribute string  `yaml:"attribute" json:"attribute"`
	Target    float64 `yaml:"target" json:"target"`
	Weight    float64 `yaml:"weight" json:"weight"`
	Minimum   bool    `yaml:"minimum" json:"minimum"`
}

// PseudoConstraintSpec is the file form of solver.PseudoConstraint.
type PseudoConstraintSpec struct {
	Name       string                `yaml:"name" json:"name"`
	Target     float64               `yaml:"target" json:"target"`
	Weight     float64               `yaml:"weight" json:"weight"`
	Minimum    bool                  `yaml:"minimum" json:"minimum"`
	Attributes []PseudoAttributeSpec `yaml:"attributes" json:"attributes"`
}

// PseudoAttributeSpec is the file form of solver.PseudoAttribute. Groups, if
// set, restricts wildcard values (see solver.GroupsEqual).
type PseudoAttributeSpec struct {
	Name       string   `yaml:"name" json:"name"`
	Multiplier float64  `yaml:"multiplier" json:"multiplier"`
	Groups     []string `yaml:"groups,flow" json:"groups"`
}

// LoadPlan reads and validates a plan request file (YAML or JSON).
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPlan: %w", err)
	}
	var p Plan
	if err := unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("LoadPlan(%s): %w", path, err)
	}
	if p.Tree != "" && !filepath.IsAbs(p.Tree) {
		p.Tree = filepath.Join(filepath.Dir(path), p.Tree)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPlan(%s): %w", path, err)
	}

	return &p, nil
}

// Validate checks the fields that do not need the tree.
func (p *Plan) Validate() error {
	switch {
	case p.Tree == "":
		return fmt.Errorf("plan has no tree: %w", ErrInvalidConfig)
	case p.TotalPoints <= 0:
		return fmt.Errorf("total_points=%d must be > 0: %w", p.TotalPoints, ErrInvalidConfig)
	case len(p.Start) == 0:
		return fmt.Errorf("plan has no start nodes: %w", ErrInvalidConfig)
	}
	for _, pc := range p.PseudoConstraints {
		if pc.Name == "" {
			return fmt.Errorf("pseudo constraint without name: %w", ErrInvalidConfig)
		}
	}

	return nil
}

// LoadTree loads the plan's tree file.
func (p *Plan) LoadTree() (*skilltree.Tree, error) {
	return skilltree.Load(p.Tree)
}

// Settings returns the session settings of the plan with the given search
// tunables.
func (p *Plan) Settings(search solver.SearchSettings) solver.Settings {
	return solver.Settings{
		Start:       p.Start,
		Checked:     p.Checked,
		Crossed:     p.Crossed,
		SubsetTree:  p.Subset,
		TotalPoints: p.TotalPoints,
		Search:      search,
	}
}

// AdvancedSettings returns the constraint strategy settings of the plan with
// the scoring constants of sc.
func (p *Plan) AdvancedSettings(sc SolverConfig) solver.AdvancedSettings {
	out := solver.AdvancedSettings{
		InitialAttributes:   p.InitialAttributes,
		CSVWeightMultiplier: sc.CSVWeightMultiplier,
		OverBudgetWeight:    sc.OverBudgetWeight,
		UnderBudgetFactor:   sc.UnderBudgetFactor,
	}
	for _, c := range p.Constraints {
		out.Constraints = append(out.Constraints, solver.Constraint(c))
	}
	for _, pc := range p.PseudoConstraints {
		spc := solver.PseudoConstraint{Name: pc.Name, Target: pc.Target, Weight: pc.Weight, Minimum: pc.Minimum}
		for _, a := range pc.Attributes {
			attr := solver.PseudoAttribute{Name: a.Name, Multiplier: a.Multiplier}
			if a.Multiplier == 0 {
				attr.Multiplier = 1
			}
			if len(a.Groups) > 0 {
				attr.Condition = solver.GroupsEqual(a.Groups...)
			}
			spc.Attributes = append(spc.Attributes, attr)
		}
		out.PseudoConstraints = append(out.PseudoConstraints, spc)
	}

	return out
}
