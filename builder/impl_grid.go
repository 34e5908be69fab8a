// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_grid.go - implementation of Grid(rows, cols) constructor.
//
// Contract:
//   • rows ≥ 1, cols ≥ 1 and rows*cols ≥ 2 (else ErrTooFewNodes).
//   • Nodes created row-major in one fresh group.
//   • Edges: right neighbour first, then down neighbour, per cell in row-major order.
//
// Complexity: O(R*C) nodes + O(2*R*C) edges.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

const methodGrid = "Grid"

// Grid returns a Constructor that builds a 4-neighbourhood lattice.
func Grid(rows, cols int) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		if rows < 1 || cols < 1 || rows*cols < 2 {
			return fmt.Errorf("%s: %dx%d: %w", methodGrid, rows, cols, ErrTooFewNodes)
		}

		// 1) Nodes, row-major.
		group := buf.beginCall()
		ids := make([]skilltree.NodeID, rows*cols)
		for i := range ids {
			id, err := buf.addNode(cfg, group)
			if err != nil {
				return fmt.Errorf("%s: %w", methodGrid, err)
			}
			ids[i] = id
		}

		// 2) Edges: right, then down.
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := ids[r*cols+c]
				if c+1 < cols {
					if err := buf.addEdge(u, ids[r*cols+c+1]); err != nil {
						return fmt.Errorf("%s: %w", methodGrid, err)
					}
				}
				if r+1 < rows {
					if err := buf.addEdge(u, ids[(r+1)*cols+c]); err != nil {
						return fmt.Errorf("%s: %w", methodGrid, err)
					}
				}
			}
		}

		return nil
	}
}
