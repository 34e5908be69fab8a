package metrics_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/katalvlaran/treeplan/genetic"
	"github.com/katalvlaran/treeplan/metrics"
	"github.com/katalvlaran/treeplan/steiner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	var st steiner.Stats
	st.Applied[steiner.RuleDegreeTwo] = 3
	st.Final = 12
	c.ObserveReduction(st)
	c.ObserveGeneration(genetic.Stats{Generation: 0, Best: 0.25})
	c.ObserveGeneration(genetic.Stats{Generation: 1, Best: 0.5})
	c.ObserveSearch(40, 7)
	c.ObservePlan(metrics.OutcomeSolved, 20*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)

	var buf bytes.Buffer
	require.NoError(t, metrics.WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, `treeplan_reduction_nodes_total{rule="degree_two"} 3`)
	assert.Contains(t, out, "treeplan_reduction_search_space_nodes 12")
	assert.Contains(t, out, "treeplan_genetic_generations_total 2")
	assert.Contains(t, out, "treeplan_genetic_best_fitness 0.5")
	assert.Contains(t, out, "treeplan_genetic_evaluations_total 40")
	assert.Contains(t, out, "treeplan_genetic_cache_hits_total 7")
	assert.Contains(t, out, `treeplan_plans_total{outcome="solved"} 1`)
}

func TestCollectors_NilSafe(t *testing.T) {
	var c *metrics.Collectors
	assert.NotPanics(t, func() {
		c.ObserveReduction(steiner.Stats{})
		c.ObserveGeneration(genetic.Stats{})
		c.ObserveSearch(1, 1)
		c.ObservePlan(metrics.OutcomeFailed, time.Second)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
