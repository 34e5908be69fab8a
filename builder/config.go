// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • idFn   = DefaultIDFn      (index i → NodeID(i))
//   • rng    = nil              (pure/deterministic unless seeded)
//   • kindFn = every node normal
//   • attrFn = nil              (no attributes)

package builder

import (
	"math/rand"

	"github.com/katalvlaran/treeplan/skilltree"
)

// builderConfig aggregates all knobs used by constructors.
// It is passed by VALUE to constructors (immutable to callers).
type builderConfig struct {
	// Node id strategy: global creation index -> id.
	idFn IDFn
	// RNG for stochastic choices; nil means "no randomness".
	rng *rand.Rand
	// Kind assignment per creation index.
	kindFn func(idx int) skilltree.Kind
	// Attribute generator per creation index; nil leaves nodes bare.
	attrFn AttributeFn
}

// newBuilderConfig constructs a config with deterministic defaults and applies
// all options in order (later overrides earlier).
// Complexity: O(len(opts)) time, O(1) space.
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{
		idFn:   DefaultIDFn,
		kindFn: func(int) skilltree.Kind { return skilltree.KindNormal },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
