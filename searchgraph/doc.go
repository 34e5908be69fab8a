// Package searchgraph builds the graph the planner searches: an arena of
// nodes addressed by stable integer ID, each node condensing one or more raw
// tree ids.
//
// A node starts out holding a single raw id. SetStartNodes condenses several
// raw ids (the already allocated nodes, or the class start) into one
// super-node. During search-space reduction Merge folds one node into
// another; the absorbed slot stays in the arena and a redirect table maps it
// to its absorber, so IDs handed out earlier never dangle.
//
// Adjacency is maintained incrementally: adding a node links it to every
// node already holding one of its raw neighbours. Neighbour lists are kept
// sorted, which makes every traversal over the graph deterministic.
//
// Complexity
//
//   - AddNode: O(d log d) where d is the raw degree.
//   - Merge:   O(d log d) plus the raw id union.
//   - Resolve: amortised near O(1) thanks to path compression.
package searchgraph
