// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_random_sparse.go - implementation of RandomSparse(n, p) constructor.
//
// Canonical model:
//   - A spanning chain 0-1-...-n-1 keeps the tree connected (planner inputs
//     are always connected), then every other unordered pair {i,j}, i<j, is
//     included independently with probability p.
//
// Contract:
//   - n ≥ 2 (else ErrTooFewNodes).
//   - 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   - cfg.rng must be non-nil when 0 < p < 1 (else ErrNeedRandSource).
//
// Determinism:
//   - Stable trial order: for each i asc, j asc with j>i+1.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

const (
	methodRandomSparse = "RandomSparse"
	probMin            = 0.0
	probMax            = 1.0
)

// RandomSparse returns a Constructor sampling a connected sparse graph.
func RandomSparse(n int, p float64) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		// 1) Validate parameters early.
		if n < minPathNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodRandomSparse, n, minPathNodes, ErrTooFewNodes)
		}
		if p < probMin || p > probMax {
			return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w",
				methodRandomSparse, p, probMin, probMax, ErrInvalidProbability)
		}
		if cfg.rng == nil && p > probMin && p < probMax {
			return fmt.Errorf("%s: %w", methodRandomSparse, ErrNeedRandSource)
		}

		// 2) Nodes and the spanning chain.
		group := buf.beginCall()
		ids := make([]skilltree.NodeID, n)
		for i := 0; i < n; i++ {
			id, err := buf.addNode(cfg, group)
			if err != nil {
				return fmt.Errorf("%s: %w", methodRandomSparse, err)
			}
			ids[i] = id
			if i > 0 {
				if err = buf.addEdge(ids[i-1], id); err != nil {
					return fmt.Errorf("%s: %w", methodRandomSparse, err)
				}
			}
		}

		// 3) Bernoulli trials over the remaining pairs.
		for i := 0; i < n; i++ {
			for j := i + 2; j < n; j++ {
				take := p == probMax
				if cfg.rng != nil {
					take = cfg.rng.Float64() < p
				}
				if !take {
					continue
				}
				if err := buf.addEdge(ids[i], ids[j]); err != nil {
					return fmt.Errorf("%s: %w", methodRandomSparse, err)
				}
			}
		}

		return nil
	}
}
