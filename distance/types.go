// Package distance defines the shortest-path cache between indexed search
// graph nodes and its sentinel errors.
package distance

import (
	"errors"
	"math"
)

// ErrNotConnected is returned (wrapped) when a required node cannot be
// reached from the start node. It aborts the whole planning attempt.
var ErrNotConnected = errors.New("distance: nodes are not connected")

// Unreachable is the distance reported between disconnected indices.
const Unreachable = math.MaxUint32
