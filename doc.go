// Package treeplan plans connected skill trees: given a graph of skill nodes,
// a start, a point budget and attribute targets, it searches for the set of
// nodes that best meets the targets while staying connected to the start.
//
// 🚀 What is inside?
//
//	A deterministic pipeline built from small, single-purpose packages:
//		• Raw tree model: nodes, groups, attributes, YAML/JSON tree files
//		• Search graph: start super-node, merged nodes, raw-id bookkeeping
//		• Distance cache: all-pairs shortest paths between interesting nodes
//		• Spanning trees: Prim and Kruskal over the metric closure
//		• Steiner reductions: distance bound, degree tests, node merging
//		• Genetic search: elitism, tournaments, cluster mutation, hill-climb
//		• Constraint scoring: exponential satisfaction values per target
//
// ✨ Why this shape?
//
//   - Exact reductions first: every removed node is provably useless
//   - Bit strings over the reduced space: small genomes, cached fitness
//   - Reproducible: equal seeds give equal plans regardless of worker count
//
// Packages:
//
//	skilltree/    raw nodes, node sets, tree files
//	builder/      synthetic trees for tests, benchmarks and the CLI
//	searchgraph/  search graph arena with merge redirection
//	distance/     distance lookup between indexed search graph nodes
//	dsu/          disjoint sets for Kruskal
//	edgeset/      weighted undirected edge set
//	mst/          metric-closure spanning trees
//	steiner/      search-space reduction
//	genetic/      evolutionary loop driver
//	solver/       planning sessions and the constraint strategy
//	config/       configuration and plan request files
//	metrics/      Prometheus collectors
//	cmd/treeplan  command-line interface
//
// Quick ASCII example:
//
//	    S───a───b        S is the start and t a checked node. The
//	    │       │        reductions drop the long arc a─b and merge
//	    c───────t        c and t into S: the plan is {S, c, t}.
//
//	go install github.com/katalvlaran/treeplan/cmd/treeplan@latest
package treeplan
