package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/treeplan/builder"
	"github.com/katalvlaran/treeplan/config"
	"github.com/katalvlaran/treeplan/metrics"
	"github.com/katalvlaran/treeplan/skilltree"
	"github.com/katalvlaran/treeplan/solver"
	"github.com/katalvlaran/treeplan/steiner"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
}

type planOptions struct {
	planPath   string
	jsonOut    bool
	metricsOut string
}

type generateOptions struct {
	topology   string
	n          int
	rows, cols int
	clusters   int
	prob       float64
	seed       int64
	attributes []string
	maxValue   int
	out        string
}

func newRootCmd(ctx context.Context, out io.Writer) *cobra.Command {
	ro := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "treeplan",
		Short:        "Plan connected skill trees that meet attribute targets within a point budget",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&ro.configPath, "config", "c", "", "path to a YAML or JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&ro.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&ro.logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newPlanCmd(ctx, ro), newReduceCmd(ctx, ro), newGenerateCmd())

	return rootCmd
}

// setup loads the configuration and builds the logger. Flags override the
// configuration.
func (ro *rootOptions) setup(errOut io.Writer) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if ro.logLevel != "" {
		cfg.Logging.Level = ro.logLevel
	}
	if ro.logFormat != "" {
		cfg.Logging.Format = ro.logFormat
	}
	if ro.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	logger := log.New()
	logger.SetOutput(errOut)
	level, _ := log.ParseLevel(cfg.Logging.Level)
	logger.SetLevel(level)
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return cfg, logger, nil
}

// openSession loads the plan, its tree and the constraint strategy.
func openSession(planPath string, cfg config.Config, opts ...solver.SessionOption) (*solver.Session, *config.Plan, error) {
	plan, err := config.LoadPlan(planPath)
	if err != nil {
		return nil, nil, err
	}
	tree, err := plan.LoadTree()
	if err != nil {
		return nil, nil, err
	}
	strategy, err := solver.NewAdvanced(tree, plan.TotalPoints, plan.AdvancedSettings(cfg.Solver))
	if err != nil {
		return nil, nil, err
	}
	s, err := solver.NewSession(tree, plan.Settings(cfg.Solver.SearchSettings()), strategy, opts...)
	if err != nil {
		return nil, nil, err
	}

	return s, plan, nil
}

func newPlanCmd(ctx context.Context, ro *rootOptions) *cobra.Command {
	po := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Search the best tree for a plan request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := ro.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if po.metricsOut == "" {
				po.metricsOut = cfg.Metrics.Out
			}

			reg := prometheus.NewRegistry()
			s, plan, err := openSession(po.planPath, cfg,
				solver.WithLogger(logger),
				solver.WithMetrics(metrics.New(reg)),
			)
			if err != nil {
				return err
			}

			res, err := s.Run(ctx)
			switch {
			case res == nil:
				return err
			case errors.Is(err, solver.ErrNoImprovement):
				logger.Warn("nothing to search; printing the tree through the checked nodes")
			case err != nil:
				logger.WithError(err).Warn("search interrupted; printing the best tree so far")
			}

			if po.metricsOut != "" {
				if werr := writeMetrics(po.metricsOut, reg); werr != nil {
					return werr
				}
			}
			if po.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), res, plan.TotalPoints)

			return nil
		},
	}
	cmd.Flags().StringVarP(&po.planPath, "plan", "p", "", "path to the plan request file")
	cmd.Flags().BoolVar(&po.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&po.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := metrics.WriteText(f, g); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func printResult(w io.Writer, res *solver.Result, total int) {
	fmt.Fprintf(w, "session:   %s\n", res.SessionID)
	fmt.Fprintf(w, "nodes:     %v\n", res.Nodes)
	fmt.Fprintf(w, "points:    %d/%d\n", res.UsedPoints, total)
	fmt.Fprintf(w, "fitness:   %.6f\n", res.Fitness)
	fmt.Fprintf(w, "searched:  %d nodes, %d generations, %d evaluations\n", res.SearchSpace, res.Generations, res.Evaluations)
	if len(res.Unsatisfied) > 0 {
		fmt.Fprintf(w, "below min: %s\n", strings.Join(res.Unsatisfied, ", "))
	}
}

func newReduceCmd(ctx context.Context, ro *rootOptions) *cobra.Command {
	var planPath string
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Build and reduce the search space of a plan request without searching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := ro.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, _, err := openSession(planPath, cfg, solver.WithLogger(logger))
			if err != nil {
				return err
			}
			res, err := s.Reduce(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "candidates: %d\n", res.Stats.Candidates)
			fmt.Fprintf(w, "final:      %d (%d fixed, %d free)\n", res.Stats.Final, len(res.FixedTargets()), len(res.Free()))
			for _, r := range steiner.Rules() {
				fmt.Fprintf(w, "  %-15s %d\n", r.String()+":", res.Stats.Count(r))
			}
			fmt.Fprintf(w, "least:      %v (weight %d)\n", res.LeastSolution.Sorted(), res.LeastWeight)

			return nil
		},
	}
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "path to the plan request file")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	g := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic tree file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := g.build()
			if err != nil {
				return err
			}
			if g.out == "" || g.out == "-" {
				return tree.Encode(cmd.OutOrStdout())
			}
			f, err := os.Create(g.out)
			if err != nil {
				return err
			}
			if err := tree.Encode(f); err != nil {
				f.Close()
				return err
			}

			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&g.topology, "topology", "t", "clusters", "ring, path, star, grid, sparse or clusters")
	cmd.Flags().IntVarP(&g.n, "nodes", "n", 16, "node count (ring, path, star, sparse) or cluster size (clusters)")
	cmd.Flags().IntVar(&g.rows, "rows", 4, "grid rows")
	cmd.Flags().IntVar(&g.cols, "cols", 4, "grid columns")
	cmd.Flags().IntVar(&g.clusters, "clusters", 3, "cluster count")
	cmd.Flags().Float64Var(&g.prob, "p", 0.1, "extra edge probability (sparse)")
	cmd.Flags().Int64Var(&g.seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&g.attributes, "attribute", []string{"+# to maximum Life"}, "attribute names to scatter over the nodes")
	cmd.Flags().IntVar(&g.maxValue, "max-value", 10, "largest attribute value")
	cmd.Flags().StringVarP(&g.out, "out", "o", "-", "output file")

	return cmd
}

func (g *generateOptions) build() (*skilltree.Tree, error) {
	var con builder.Constructor
	switch g.topology {
	case "ring":
		con = builder.Cycle(g.n)
	case "path":
		con = builder.Path(g.n)
	case "star":
		con = builder.Star(g.n)
	case "grid":
		con = builder.Grid(g.rows, g.cols)
	case "sparse":
		con = builder.RandomSparse(g.n, g.prob)
	case "clusters":
		con = builder.Clusters(g.clusters, g.n)
	default:
		return nil, fmt.Errorf("unknown topology %q", g.topology)
	}
	if len(g.attributes) == 0 || g.maxValue < 1 {
		return nil, errors.New("generate: need at least one attribute and max-value ≥ 1")
	}

	return builder.BuildTree([]builder.BuilderOption{
		builder.WithSeed(g.seed),
		builder.WithRoot(0),
		builder.WithAttributes(builder.RandomAttributes(g.attributes, g.maxValue, 0.5)),
	}, con)
}
