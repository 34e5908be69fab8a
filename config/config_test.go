package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/treeplan/config"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	// A missing file keeps the defaults.
	cfg, err = config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Solver.Generations)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "cfg.yaml", `
solver:
  generations: 50
  workers: 2
logging:
  level: debug
`)
	jsonPath := writeFile(t, dir, "cfg.json", `{"solver": {"generations": 60}, "logging": {"format": "json"}}`)

	cfg, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Solver.Generations)
	assert.Equal(t, 2, cfg.Solver.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 7.0, cfg.Solver.PopulationMultiplier)

	cfg, err = config.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Solver.Generations)
	assert.Equal(t, "json", cfg.Logging.Format)

	t.Setenv("TREEPLAN_GENERATIONS", "5")
	t.Setenv("TREEPLAN_HILL_CLIMB", "false")
	t.Setenv("TREEPLAN_SEED", "42")
	t.Setenv("TREEPLAN_METRICS_OUT", "metrics.txt")
	t.Setenv("TREEPLAN_WORKERS", "not a number")
	cfg, err = config.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Solver.Generations)
	assert.False(t, cfg.Solver.HillClimb)
	assert.Equal(t, int64(42), cfg.Solver.Seed)
	assert.Equal(t, "metrics.txt", cfg.Metrics.Out)
	assert.Equal(t, 2, cfg.Solver.Workers)

	search := cfg.Solver.SearchSettings()
	assert.True(t, search.DisableHillClimb)
	assert.Equal(t, 5, search.Generations)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"generations": "solver: {generations: 0}",
		"mutation":    "solver: {mutation_rate: 1.5}",
		"workers":     "solver: {workers: 0}",
		"elites":      "solver: {elites: 0}",
		"level":       "logging: {level: loud}",
		"format":      "logging: {format: xml}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, dir, name+".yaml", body))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := config.Load(writeFile(t, dir, "broken.yaml", "solver: [unterminated"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalidConfig)
}

const planBody = `
tree: tree.yaml
total_points: 3
start: [0]
checked: [2]
constraints:
  - attribute: "+# to maximum Life"
    target: 100
    weight: 2
    minimum: true
pseudo_constraints:
  - name: fire
    target: 10
    weight: 1
    attributes:
      - name: "#% increased {0} Damage"
        groups: [Fire]
initial_attributes:
  "+# to maximum Life": 5
`

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tree.yaml", `
nodes:
  - {id: 0, kind: root, neighbors: [1]}
  - {id: 1, neighbors: [0, 2], attributes: {"#% increased Fire Damage": [12]}}
  - {id: 2, neighbors: [1], attributes: {"+# to maximum Life": [100]}}
`)
	p, err := config.LoadPlan(writeFile(t, dir, "plan.yaml", planBody))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tree.yaml"), p.Tree)
	assert.Equal(t, []skilltree.NodeID{2}, p.Checked)

	tree, err := p.LoadTree()
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())

	settings := p.Settings(config.Default().Solver.SearchSettings())
	require.NoError(t, settings.Validate(tree))

	adv := p.AdvancedSettings(config.Default().Solver)
	require.Len(t, adv.Constraints, 1)
	assert.Equal(t, solver.Constraint{Attribute: "+# to maximum Life", Target: 100, Weight: 2, Minimum: true}, adv.Constraints[0])
	require.Len(t, adv.PseudoConstraints, 1)
	assert.Equal(t, 1.0, adv.PseudoConstraints[0].Attributes[0].Multiplier)

	a, err := solver.NewAdvanced(tree, p.TotalPoints, adv)
	require.NoError(t, err)
	assert.Equal(t, []float64{105, 12}, a.Totals(skilltree.NewNodeSet(0, 1, 2)))
}

func TestLoadPlan_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no tree":   "total_points: 3\nstart: [0]",
		"no points": "tree: t.yaml\nstart: [0]",
		"no start":  "tree: t.yaml\ntotal_points: 3",
		"no name":   "tree: t.yaml\ntotal_points: 3\nstart: [0]\npseudo_constraints: [{target: 1}]",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadPlan(writeFile(t, dir, "p.yaml", body))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err := config.LoadPlan(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
