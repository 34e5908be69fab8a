// Package builder provides helper types for id schemes and attribute
// generation in tree constructors.
package builder

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/treeplan/skilltree"
)

// IDFn generates a node id from its zero-based creation index.
// It must be pure and injective.
type IDFn func(idx int) skilltree.NodeID

// DefaultIDFn returns idx unchanged: 0→0, 42→42.
func DefaultIDFn(idx int) skilltree.NodeID {
	return skilltree.NodeID(idx)
}

// OffsetIDFn returns idx+offset, handy to mimic sparse real-world ids.
// Panics if offset < 0.
func OffsetIDFn(offset int) IDFn {
	if offset < 0 {
		panic(fmt.Sprintf("OffsetIDFn: offset must be ≥ 0, got %d", offset))
	}

	return func(idx int) skilltree.NodeID {
		return skilltree.NodeID(idx + offset)
	}
}

// StrideIDFn returns idx*stride+offset. Panics if stride < 1 or offset < 0.
func StrideIDFn(stride, offset int) IDFn {
	if stride < 1 || offset < 0 {
		panic(fmt.Sprintf("StrideIDFn: require stride ≥ 1 and offset ≥ 0, got %d, %d", stride, offset))
	}

	return func(idx int) skilltree.NodeID {
		return skilltree.NodeID(idx*stride + offset)
	}
}

// AttributeFn produces the attribute map of the node at creation index idx.
// rng may be nil; implementations must then be deterministic on idx alone.
type AttributeFn func(idx int, rng *rand.Rand) map[string][]float64

// ConstAttribute gives every node name → [value].
func ConstAttribute(name string, value float64) AttributeFn {
	return func(int, *rand.Rand) map[string][]float64 {
		return map[string][]float64{name: {value}}
	}
}

// IndexedAttributes gives node idx the attributes listed under idx in table;
// other nodes stay bare.
func IndexedAttributes(table map[int]map[string][]float64) AttributeFn {
	return func(idx int, _ *rand.Rand) map[string][]float64 {
		src, ok := table[idx]
		if !ok {
			return nil
		}
		out := make(map[string][]float64, len(src))
		for k, v := range src {
			out[k] = append([]float64(nil), v...)
		}

		return out
	}
}

// RandomAttributes gives each node, with probability p, one attribute drawn
// uniformly from names with an integer value in [1,max]. Without rng it
// cycles through names deterministically and always uses max.
// Panics on empty names, max < 1 or p outside [0,1].
func RandomAttributes(names []string, max int, p float64) AttributeFn {
	if len(names) == 0 || max < 1 || p < 0 || p > 1 {
		panic(fmt.Sprintf("RandomAttributes: invalid arguments (names=%d, max=%d, p=%g)", len(names), max, p))
	}

	return func(idx int, rng *rand.Rand) map[string][]float64 {
		if rng == nil {
			return map[string][]float64{names[idx%len(names)]: {float64(max)}}
		}
		if rng.Float64() >= p {
			return nil
		}
		name := names[rng.Intn(len(names))]

		return map[string][]float64{name: {float64(1 + rng.Intn(max))}}
	}
}
