// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// impl_clusters.go - Clusters(k, m) and Bridge(a, b) constructors.
//
// Clusters mimics the shape of a talent tree: k rings of m nodes, each ring
// in its own group, chained by a bridge path of two travel nodes between the
// first node of ring c and the first node of ring c+1. Travel nodes get their
// own group so they are never mistaken for cluster members.
//
// Contract:
//   • k ≥ 1, m ≥ 3 (else ErrTooFewNodes).
//   • Creation order: ring 0, bridge 0→1, ring 1, bridge 1→2, ...
//
// Complexity: O(k*m) nodes and edges.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

const (
	methodClusters   = "Clusters"
	methodBridge     = "Bridge"
	bridgeTravelSize = 2
)

// Clusters returns a Constructor that builds k chained ring clusters of m nodes.
func Clusters(k, m int) Constructor {
	return func(buf *buffer, cfg builderConfig) error {
		if k < 1 || m < minCycleNodes {
			return fmt.Errorf("%s: k=%d m=%d: %w", methodClusters, k, m, ErrTooFewNodes)
		}

		buf.beginCall()
		var prevHead skilltree.NodeID
		for c := 0; c < k; c++ {
			// 1) Bridge from the previous ring's head.
			last := prevHead
			if c > 0 {
				travel := buf.nextGroup()
				for t := 0; t < bridgeTravelSize; t++ {
					id, err := buf.addNode(cfg, travel)
					if err != nil {
						return fmt.Errorf("%s: %w", methodClusters, err)
					}
					if err = buf.addEdge(last, id); err != nil {
						return fmt.Errorf("%s: %w", methodClusters, err)
					}
					last = id
				}
			}

			// 2) The ring itself.
			group := buf.nextGroup()
			ring := make([]skilltree.NodeID, m)
			for i := range ring {
				id, err := buf.addNode(cfg, group)
				if err != nil {
					return fmt.Errorf("%s: %w", methodClusters, err)
				}
				ring[i] = id
			}
			for i := range ring {
				if err := buf.addEdge(ring[i], ring[(i+1)%m]); err != nil {
					return fmt.Errorf("%s: %w", methodClusters, err)
				}
			}
			if c > 0 {
				if err := buf.addEdge(last, ring[0]); err != nil {
					return fmt.Errorf("%s: %w", methodClusters, err)
				}
			}
			prevHead = ring[0]
		}

		return nil
	}
}

// Bridge returns a Constructor linking the first node created by constructor
// call a to the first node created by call b (calls are zero-based, Bridge
// itself does not count as a call).
func Bridge(a, b int) Constructor {
	return func(buf *buffer, _ builderConfig) error {
		if a < 0 || b < 0 || a >= len(buf.calls) || b >= len(buf.calls) || a == b ||
			len(buf.calls[a]) == 0 || len(buf.calls[b]) == 0 {
			return fmt.Errorf("%s(%d,%d): %w", methodBridge, a, b, ErrConstructFailed)
		}
		if err := buf.addEdge(buf.calls[a][0], buf.calls[b][0]); err != nil {
			return fmt.Errorf("%s: %w", methodBridge, err)
		}

		return nil
	}
}
