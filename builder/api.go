// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// api.go - public entry-point for the builder package.
//
// Design contract:
//   - One orchestrator: BuildTree(bopts, cons...). Resolves cfg, runs cons in order
//     against a shared node buffer, then validates the result through skilltree.New.
//   - Constructors are declared here and implemented in impl_*.go.
//   - Determinism: same options, seed and constructor order ⇒ identical trees.
//   - Safety: constructors return sentinel errors; only option constructors panic.

package builder

import (
	"fmt"

	"github.com/katalvlaran/treeplan/skilltree"
)

// Constructor appends a topology to the buffer using the resolved config.
// Constructors MUST:
//   - Validate parameters early and return sentinel errors (no panics).
//   - Allocate node ids only through buf.addNode so composed constructors never collide.
//   - Emit nodes and edges in a stable, documented order.
type Constructor func(buf *buffer, cfg builderConfig) error

// BuildTree resolves the builder configuration from bopts, applies all
// constructors in order and returns the validated tree.
//
// Errors:
//   - Constructor errors wrapped with "BuildTree: %w"; branch with errors.Is
//     against ErrTooFewNodes, ErrInvalidProbability, ErrNeedRandSource, ...
//   - skilltree validation errors (should not happen for built-in constructors).
//
// Complexity: Σ cost of each constructor plus O(V+E) validation.
func BuildTree(bopts []BuilderOption, cons ...Constructor) (*skilltree.Tree, error) {
	cfg := newBuilderConfig(bopts...)
	buf := newBuffer()

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildTree: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(buf, cfg); err != nil {
			return nil, fmt.Errorf("BuildTree: %w", err)
		}
	}

	tree, err := skilltree.New(buf.nodes())
	if err != nil {
		return nil, fmt.Errorf("BuildTree: %w", err)
	}

	return tree, nil
}

// MustBuildTree is BuildTree for fixtures: it panics on error.
func MustBuildTree(bopts []BuilderOption, cons ...Constructor) *skilltree.Tree {
	tree, err := BuildTree(bopts, cons...)
	if err != nil {
		panic(err)
	}

	return tree
}

// =============================================================================
// Topology factories (declarations) - implemented in impl_*.go
// =============================================================================
//
// Every factory places its nodes in a fresh group and assigns kinds and
// attributes through cfg.kindFn / cfg.attrFn, keyed by the node's global
// creation index.

// Cycle builds an n-node ring (n ≥ 3).
//func Cycle(n int) Constructor

// Path builds an n-node chain (n ≥ 2).
//func Path(n int) Constructor

// Star builds a hub with n-1 leaves (n ≥ 2); the hub is created first.
//func Star(n int) Constructor

// Grid builds an R×C 4-neighbourhood lattice, row-major.
//func Grid(rows, cols int) Constructor

// RandomSparse builds an Erdős–Rényi-like graph over n nodes.
//func RandomSparse(n int, p float64) Constructor

// Clusters builds k rings of size m, each in its own group, chained by bridges.
//func Clusters(k, m int) Constructor

// Bridge links the first node of constructor call a to the first node of call b.
//func Bridge(a, b int) Constructor
