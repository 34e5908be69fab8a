// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_cycle.go - implementation of Cycle(n) constructor.
//
// Contract:
//   • n ≥ 3 (else ErrTooFewNodes).
//   • Adds n nodes in one fresh group, in creation order.
//   • Emits edges in stable order i -> (i+1)%n for i=0..n-1.
//
// Complexity:
//   • Time: O(n) nodes + O(n) edges.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

const (
	methodCycle   = "Cycle"
	minCycleNodes = 3
)

// Cycle returns a Constructor that builds an n-node ring.
func Cycle(n int) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		// Validate parameter domain early.
		if n < minCycleNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodCycle, n, minCycleNodes, ErrTooFewNodes)
		}

		// Add n nodes in one group.
		group := buf.beginCall()
		ids := make([]skilltree.NodeID, n)
		for i := 0; i < n; i++ {
			id, err := buf.addNode(cfg, group)
			if err != nil {
				return fmt.Errorf("%s: %w", methodCycle, err)
			}
			ids[i] = id
		}

		// Close the ring; i == n-1 connects back to 0.
		for i := 0; i < n; i++ {
			if err := buf.addEdge(ids[i], ids[(i+1)%n]); err != nil {
				return fmt.Errorf("%s: %w", methodCycle, err)
			}
		}

		return nil
	}
}
