// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_path.go - implementation of Path(n) constructor.
//
// Contract:
//   • n ≥ 2 (else ErrTooFewNodes).
//   • Adds n nodes in one fresh group; edges i -> i+1 for i=0..n-2.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

const (
	methodPath   = "Path"
	minPathNodes = 2
)

// Path returns a Constructor that builds an n-node chain.
func Path(n int) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		if n < minPathNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodPath, n, minPathNodes, ErrTooFewNodes)
		}

		group := buf.beginCall()
		var prev skilltree.NodeID
		for i := 0; i < n; i++ {
			id, err := buf.addNode(cfg, group)
			if err != nil {
				return fmt.Errorf("%s: %w", methodPath, err)
			}
			if i > 0 {
				if err = buf.addEdge(prev, id); err != nil {
					return fmt.Errorf("%s: %w", methodPath, err)
				}
			}
			prev = id
		}

		return nil
	}
}
