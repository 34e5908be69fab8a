// Package skilltree holds the raw talent graph the planner works on.
//
// What
//
//   - Tree: validated, immutable adjacency of raw nodes plus their named
//     numeric attribute contributions ("+# to Strength" → [10]).
//   - Node kinds that matter to planning (keystone, root/class start).
//   - Groups: clusters of nodes sharing a group id.
//   - NodeSet and SetPool: raw id sets and a session-owned pool that recycles
//     them during fitness evaluation.
//   - Load / Decode / Encode: YAML (or JSON) tree files.
//
// Invariants
//
//   - Adjacency is symmetric and free of self loops.
//   - Node ids are unique; neighbour lists are sorted and deduplicated.
//
// Usage
//
//	tree, err := skilltree.Load("tree.yaml")
//	if err != nil {
//		// ErrEmptyTree, ErrDuplicateNode, ErrAsymmetricAdjacency, ...
//	}
//	for _, g := range tree.Groups() {
//		fmt.Println(g.ID, g.Nodes)
//	}
package skilltree
