// Package skilltree defines the raw node graph consumed by the planner, its
// node sets and the errors raised while loading it.
package skilltree

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for tree construction and decoding.
var (
	// ErrUnknownNode is returned when a referenced node id is not part of the tree.
	ErrUnknownNode = errors.New("skilltree: unknown node")

	// ErrDuplicateNode is returned when two nodes share the same id.
	ErrDuplicateNode = errors.New("skilltree: duplicate node id")

	// ErrAsymmetricAdjacency is returned when a lists b as neighbour but b does not list a.
	ErrAsymmetricAdjacency = errors.New("skilltree: asymmetric adjacency")

	// ErrSelfLoop is returned when a node lists itself as neighbour.
	ErrSelfLoop = errors.New("skilltree: self loop")

	// ErrUnknownKind is returned when a node kind string cannot be parsed.
	ErrUnknownKind = errors.New("skilltree: unknown node kind")

	// ErrEmptyTree is returned when a tree without nodes is decoded.
	ErrEmptyTree = errors.New("skilltree: tree has no nodes")
)

// NodeID identifies a raw node of the tree.
type NodeID int

// Kind classifies a raw node. Only Keystone and Root change planner behaviour:
// keystones are excluded from the search graph unless checked, roots (class
// starts) can't be pathed through and are not charged against the point budget.
type Kind uint8

const (
	KindNormal Kind = iota
	KindNotable
	KindKeystone
	KindMastery
	KindRoot
)

var kindNames = [...]string{
	KindNormal:   "normal",
	KindNotable:  "notable",
	KindKeystone: "keystone",
	KindMastery:  "mastery",
	KindRoot:     "root",
}

// String returns the lower-case name used in tree files.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a tree-file kind name into a Kind. The empty string is normal.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindNormal, nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}

	return KindNormal, fmt.Errorf("ParseKind(%q): %w", s, ErrUnknownKind)
}

// Node is an immutable raw node: id, adjacency and attribute contributions.
// Attribute values are lists because a single stat line may carry several
// numbers (e.g. "Adds # to # Fire Damage").
type Node struct {
	ID         NodeID
	Name       string
	Group      int
	Kind       Kind
	Neighbors  []NodeID
	Attributes map[string][]float64
}

// IsRoot reports whether the node is a class start.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// IsKeystone reports whether the node is a keystone.
func (n *Node) IsKeystone() bool { return n.Kind == KindKeystone }

// Group is a cluster of nodes sharing the same group id, ordered by node id.
type Group struct {
	ID    int
	Nodes []NodeID
}
