// Package config loads treeplan settings: the tool configuration (search
// tunables, logging, metrics) and plan request files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/treeplan/solver"
)

// ErrInvalidConfig indicates a configuration or plan that fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the tool configuration.
type Config struct {
	Solver  SolverConfig  `yaml:"solver" json:"solver"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// SolverConfig tunes the genetic search and the scoring.
type SolverConfig struct {
	PopulationMultiplier float64 `yaml:"population_multiplier" json:"population_multiplier"`
	Generations          int     `yaml:"generations" json:"generations"`
	MaxMutateClusterSize int     `yaml:"max_mutate_cluster_size" json:"max_mutate_cluster_size"`
	MutationRate         float64 `yaml:"mutation_rate" json:"mutation_rate"`
	CrossoverRate        float64 `yaml:"crossover_rate" json:"crossover_rate"`
	TournamentSize       int     `yaml:"tournament_size" json:"tournament_size"`
	Elites               int     `yaml:"elites" json:"elites"`
	Workers              int     `yaml:"workers" json:"workers"`
	HillClimb            bool    `yaml:"hill_climb" json:"hill_climb"`
	MaxHillClimbSweeps   int     `yaml:"max_hill_climb_sweeps" json:"max_hill_climb_sweeps"`
	Seed                 int64   `yaml:"seed" json:"seed"`

	CSVWeightMultiplier float64 `yaml:"csv_weight_multiplier" json:"csv_weight_multiplier"`
	OverBudgetWeight    float64 `yaml:"over_budget_weight" json:"over_budget_weight"`
	UnderBudgetFactor   float64 `yaml:"under_budget_factor" json:"under_budget_factor"`
}

// LoggingConfig selects the log level and format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig controls the metrics dump. An empty Out disables it.
type MetricsConfig struct {
	Out string `yaml:"out" json:"out"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Solver: SolverConfig{
			PopulationMultiplier: 7,
			Generations:          200,
			MaxMutateClusterSize: 4,
			MutationRate:         0.3,
			CrossoverRate:        0.8,
			TournamentSize:       3,
			Elites:               2,
			Workers:              4,
			HillClimb:            true,
			Seed:                 1,
			CSVWeightMultiplier:  solver.DefaultCSVWeightMultiplier,
			OverBudgetWeight:     solver.DefaultOverBudgetWeight,
			UnderBudgetFactor:    solver.DefaultUnderBudgetFactor,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load resolves the configuration: defaults, then the file at path (YAML,
// falling back to JSON; a missing file keeps the defaults), then TREEPLAN_*
// environment variables, then Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return unmarshal(data, cfg)
}

// unmarshal tries YAML first, then JSON.
func unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		if jsonErr := json.Unmarshal(data, v); jsonErr != nil {
			return fmt.Errorf("parse (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	return nil
}

func loadEnv(cfg *Config) {
	s := &cfg.Solver
	envFloat("TREEPLAN_POPULATION_MULTIPLIER", &s.PopulationMultiplier)
	envInt("TREEPLAN_GENERATIONS", &s.Generations)
	envInt("TREEPLAN_MAX_MUTATE_CLUSTER_SIZE", &s.MaxMutateClusterSize)
	envFloat("TREEPLAN_MUTATION_RATE", &s.MutationRate)
	envFloat("TREEPLAN_CROSSOVER_RATE", &s.CrossoverRate)
	envInt("TREEPLAN_WORKERS", &s.Workers)
	if v := os.Getenv("TREEPLAN_HILL_CLIMB"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.HillClimb = b
		}
	}
	if v := os.Getenv("TREEPLAN_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.Seed = i
		}
	}
	if v := os.Getenv("TREEPLAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TREEPLAN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TREEPLAN_METRICS_OUT"); v != "" {
		cfg.Metrics.Out = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	s := c.Solver
	switch {
	case s.PopulationMultiplier <= 0:
		return fmt.Errorf("solver.population_multiplier=%g must be > 0: %w", s.PopulationMultiplier, ErrInvalidConfig)
	case s.Generations < 1:
		return fmt.Errorf("solver.generations=%d must be ≥ 1: %w", s.Generations, ErrInvalidConfig)
	case s.MaxMutateClusterSize < 1:
		return fmt.Errorf("solver.max_mutate_cluster_size=%d must be ≥ 1: %w", s.MaxMutateClusterSize, ErrInvalidConfig)
	case s.MutationRate <= 0 || s.MutationRate > 1:
		return fmt.Errorf("solver.mutation_rate=%g outside (0,1]: %w", s.MutationRate, ErrInvalidConfig)
	case s.CrossoverRate <= 0 || s.CrossoverRate > 1:
		return fmt.Errorf("solver.crossover_rate=%g outside (0,1]: %w", s.CrossoverRate, ErrInvalidConfig)
	case s.TournamentSize < 1:
		return fmt.Errorf("solver.tournament_size=%d must be ≥ 1: %w", s.TournamentSize, ErrInvalidConfig)
	case s.Elites < 1:
		// Zero would silently select the default.
		return fmt.Errorf("solver.elites=%d must be ≥ 1: %w", s.Elites, ErrInvalidConfig)
	case s.Workers < 1:
		return fmt.Errorf("solver.workers=%d must be ≥ 1: %w", s.Workers, ErrInvalidConfig)
	case s.MaxHillClimbSweeps < 0:
		return fmt.Errorf("solver.max_hill_climb_sweeps=%d must be ≥ 0: %w", s.MaxHillClimbSweeps, ErrInvalidConfig)
	case s.CSVWeightMultiplier <= 0, s.OverBudgetWeight <= 0, s.UnderBudgetFactor <= 0:
		return fmt.Errorf("solver scoring constants must be positive: %w", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %v: %w", err, ErrInvalidConfig)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format=%q must be text or json: %w", c.Logging.Format, ErrInvalidConfig)
	}

	return nil
}

// SearchSettings converts the solver section for a session.
func (s SolverConfig) SearchSettings() solver.SearchSettings {
	return solver.SearchSettings{
		PopulationMultiplier: s.PopulationMultiplier,
		Generations:          s.Generations,
		MaxMutateClusterSize: s.MaxMutateClusterSize,
		MutationRate:         s.MutationRate,
		CrossoverRate:        s.CrossoverRate,
		TournamentSize:       s.TournamentSize,
		Elites:               s.Elites,
		Workers:              s.Workers,
		DisableHillClimb:     !s.HillClimb,
		MaxHillClimbSweeps:   s.MaxHillClimbSweeps,
		Seed:                 s.Seed,
	}
}
