// SPDX-License-Identifier: MIT
// Package: treeplan/builder
//
// options.go - functional options for the builder package.
//
// Contract:
//   • Options are functional (type BuilderOption func(*builderConfig)).
//   • Option constructors VALIDATE and PANIC on meaningless inputs.
//     Constructors themselves MUST NOT panic.
//   • Determinism is explicit: seeding is done via WithSeed or WithRand.

package builder

import (
	"math/rand"

	"github.com/katalvlaran/treeplan/skilltree"
)

// BuilderOption customizes tree construction by mutating a builderConfig.
type BuilderOption func(*builderConfig)

// WithIDScheme sets the node id generator: creation index -> id.
// Panics on nil.
func WithIDScheme(fn IDFn) BuilderOption {
	if fn == nil {
		panic("builder: WithIDScheme(nil)")
	}
	return func(c *builderConfig) {
		c.idFn = fn
	}
}

// WithRand provides an explicit RNG for stochastic builders. Panics on nil.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed creates a new *rand.Rand with the given seed.
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithKinds assigns node kinds by creation index. Panics on nil.
func WithKinds(fn func(idx int) skilltree.Kind) BuilderOption {
	if fn == nil {
		panic("builder: WithKinds(nil)")
	}
	return func(c *builderConfig) {
		c.kindFn = fn
	}
}

// WithRoot marks the node created at index idx as a class start.
func WithRoot(idx int) BuilderOption {
	if idx < 0 {
		panic("builder: WithRoot(idx<0)")
	}
	return func(c *builderConfig) {
		prev := c.kindFn
		c.kindFn = func(i int) skilltree.Kind {
			if i == idx {
				return skilltree.KindRoot
			}
			return prev(i)
		}
	}
}

// WithAttributes sets the per-node attribute generator. Panics on nil.
func WithAttributes(fn AttributeFn) BuilderOption {
	if fn == nil {
		panic("builder: WithAttributes(nil)")
	}
	return func(c *builderConfig) {
		c.attrFn = fn
	}
}
