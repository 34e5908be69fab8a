// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_star.go - implementation of Star(n) constructor.
//
// Contract:
//   • n ≥ 2 (else ErrTooFewNodes).
//   • The hub is created first, then n-1 leaves, all in one fresh group.
//   • Edges hub -> leaf in leaf creation order.

package builder

import "fmt"

const (
	methodStar   = "Star"
	minStarNodes = 2
)

// Star returns a Constructor that builds a hub with n-1 leaves.
func Star(n int) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		if n < minStarNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodStar, n, minStarNodes, ErrTooFewNodes)
		}

		group := buf.beginCall()
		hub, err := buf.addNode(cfg, group)
		if err != nil {
			return fmt.Errorf("%s: %w", methodStar, err)
		}
		for i := 1; i < n; i++ {
			leaf, err := buf.addNode(cfg, group)
			if err != nil {
				return fmt.Errorf("%s: %w", methodStar, err)
			}
			if err = buf.addEdge(hub, leaf); err != nil {
				return fmt.Errorf("%s: %w", methodStar, err)
			}
		}

		return nil
	}
}
