package solver

import (
	"fmt"

	"github.com/katalvlaran/treeplan/searchgraph"
	"github.com/katalvlaran/treeplan/skilltree"
)

// searchSpace is the search graph of a request plus its targets.
type searchSpace struct {
	graph    *searchgraph.Graph
	fixed    []searchgraph.ID
	variable []searchgraph.ID
}

// buildSearchSpace adds the nodes a solution may use to a new search graph.
//
// Steps:
//  1. Condense the start ids into the start node.
//  2. A node is eligible unless it is a start, crossed, outside the subset
//     tree, a root (roots can't be pathed through), or rejected by
//     IncludeNodeInSearchGraph without being checked.
//  3. A group is added whole when it holds a start or checked node, when an
//     eligible member satisfies MustIncludeNodeGroup, or when it links more
//     than one outside node (it may be a pass-through). Other groups are dead
//     ends and never help.
//  4. Checked nodes become fixed targets; eligible nodes the strategy values
//     become variable targets.
func buildSearchSpace(tree *skilltree.Tree, s Settings, strategy Strategy) (*searchSpace, error) {
	// 1. Start node.
	g := searchgraph.New(tree)
	if _, err := g.SetStartNodes(s.Start); err != nil {
		return nil, fmt.Errorf("buildSearchSpace: %w", err)
	}

	// 2. Eligibility.
	start := skilltree.NewNodeSet(s.Start...)
	checked := skilltree.NewNodeSet(s.Checked...)
	crossed := skilltree.NewNodeSet(s.Crossed...)
	subset := skilltree.NewNodeSet(s.SubsetTree...)
	eligible := func(n *skilltree.Node) bool {
		switch {
		case start.Has(n.ID), crossed.Has(n.ID), n.IsRoot():
			return false
		case subset.Len() > 0 && !subset.Has(n.ID):
			return false
		}

		return checked.Has(n.ID) || strategy.IncludeNodeInSearchGraph(n)
	}

	// 3. Groups.
	for _, group := range tree.Groups() {
		include := false
		outside := skilltree.NewNodeSet()
		members := skilltree.NewNodeSet(group.Nodes...)
		for _, id := range group.Nodes {
			n, _ := tree.Node(id)
			if start.Has(id) || checked.Has(id) || (eligible(n) && strategy.MustIncludeNodeGroup(n)) {
				include = true
				break
			}
			for _, nb := range n.Neighbors {
				if !members.Has(nb) {
					outside.Add(nb)
				}
			}
		}
		if !include && outside.Len() <= 1 {
			continue
		}
		for _, id := range group.Nodes {
			if n, _ := tree.Node(id); eligible(n) {
				if _, err := g.AddNode(id); err != nil {
					return nil, fmt.Errorf("buildSearchSpace: %w", err)
				}
			}
		}
	}

	// 4. Targets.
	sp := &searchSpace{graph: g}
	for _, id := range s.Checked {
		if start.Has(id) {
			continue
		}
		gid, ok := g.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("buildSearchSpace: checked node %d not reachable: %w", id, ErrInvalidSettings)
		}
		sp.fixed = append(sp.fixed, gid)
	}
	for _, gid := range g.Nodes() {
		raw := g.Representative(gid)
		n, _ := tree.Node(raw)
		if !checked.Has(raw) && !start.Has(raw) && strategy.IsVariableTarget(n) {
			sp.variable = append(sp.variable, gid)
		}
	}

	return sp, nil
}
