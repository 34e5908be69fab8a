// Package builder provides deterministic, functional-options style
// constructors for synthetic skill trees. They back the unit tests,
// benchmarks and the `treeplan generate` command.
//
// The package offers:
//
//   - Orchestration:
//     – BuildTree(bopts, cons...): resolve options, run constructors in order,
//     validate through skilltree.New.
//     – MustBuildTree: the same for fixtures, panicking on error.
//   - Topologies (Constructor implementations):
//     – Cycle(n), Path(n), Star(n), Grid(r, c), RandomSparse(n, p).
//     – Clusters(k, m): rings joined by two-node travel bridges, the shape of
//     a real talent tree.
//     – Bridge(a, b): join two earlier constructor calls.
//   - Options:
//     – WithSeed / WithRand: RNG for stochastic builders and attribute draws.
//     – WithIDScheme: creation index → node id (DefaultIDFn, OffsetIDFn, StrideIDFn).
//     – WithKinds / WithRoot: node kinds by creation index.
//     – WithAttributes: attribute generators (ConstAttribute, IndexedAttributes,
//     RandomAttributes).
//
// Guarantees:
//
//   - Same options, seed and constructor order ⇒ identical trees.
//   - Each constructor call gets its own node group.
//   - Fast-fail on invalid option parameters via panics in option constructors;
//     constructors return sentinel errors (ErrTooFewNodes, ErrInvalidProbability,
//     ErrNeedRandSource, ErrConstructFailed).
//
// Example:
//
//	tree, err := builder.BuildTree(
//		[]builder.BuilderOption{builder.WithSeed(7), builder.WithRoot(0)},
//		builder.Clusters(4, 6),
//	)
package builder
