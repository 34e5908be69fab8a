// Package metrics exposes Prometheus collectors for planning sessions.
//
// Collectors are registered on a caller-supplied registry so several
// independent sets can coexist (tests, embedded use). Every method is safe on
// a nil *Collectors, which records nothing.
package metrics

import (
	"time"

	"github.com/katalvlaran/treeplan/genetic"
	"github.com/katalvlaran/treeplan/steiner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "treeplan"

	// Outcome label values for plans_total.
	OutcomeSolved        = "solved"
	OutcomeNoImprovement = "no_improvement"
	OutcomeFailed        = "failed"
)

// Collectors groups the metrics of the planner.
type Collectors struct {
	plans        *prometheus.CounterVec
	planDuration prometheus.Histogram
	reductions   *prometheus.CounterVec
	searchSpace  prometheus.Gauge
	generations  prometheus.Counter
	evaluations  prometheus.Counter
	cacheHits    prometheus.Counter
	bestFitness  prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// It panics if a collector with the same name is already registered.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)

	return &Collectors{
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Planning sessions by outcome.",
		}, []string{"outcome"}),
		planDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Wall time of a planning session.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		reductions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reduction",
			Name:      "nodes_total",
			Help:      "Search space nodes eliminated, by reduction rule.",
		}, []string{"rule"}),
		searchSpace: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reduction",
			Name:      "search_space_nodes",
			Help:      "Search space size after the last reduction.",
		}),
		generations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "genetic",
			Name:      "generations_total",
			Help:      "Evaluated generations, initial populations included.",
		}),
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "genetic",
			Name:      "evaluations_total",
			Help:      "Fitness function calls.",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "genetic",
			Name:      "cache_hits_total",
			Help:      "Fitness lookups answered from the cache.",
		}),
		bestFitness: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "genetic",
			Name:      "best_fitness",
			Help:      "Best fitness of the running or last session.",
		}),
	}
}

// ObserveReduction records what a reduction eliminated and the final size.
func (c *Collectors) ObserveReduction(st steiner.Stats) {
	if c == nil {
		return
	}
	for _, r := range steiner.Rules() {
		c.reductions.WithLabelValues(r.String()).Add(float64(st.Count(r)))
	}
	c.searchSpace.Set(float64(st.Final))
}

// ObserveGeneration records one evaluated generation.
func (c *Collectors) ObserveGeneration(st genetic.Stats) {
	if c == nil {
		return
	}
	c.generations.Inc()
	c.bestFitness.Set(st.Best)
}

// ObserveSearch adds the totals of a finished genetic search.
func (c *Collectors) ObserveSearch(evaluations, cacheHits uint64) {
	if c == nil {
		return
	}
	c.evaluations.Add(float64(evaluations))
	c.cacheHits.Add(float64(cacheHits))
}

// ObservePlan records a finished session.
func (c *Collectors) ObservePlan(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.plans.WithLabelValues(outcome).Inc()
	c.planDuration.Observe(elapsed.Seconds())
}
