package steiner

// NodeStates holds per-index flags of the reduction: fixed target, variable
// target and removed. A target is fixed or variable.
type NodeStates struct {
	fixed    []bool
	variable []bool
	removed  []bool
}

// NewNodeStates returns size indices with every flag cleared.
func NewNodeStates(size int) *NodeStates {
	return &NodeStates{
		fixed:    make([]bool, size),
		variable: make([]bool, size),
		removed:  make([]bool, size),
	}
}

// Len returns the number of indices.
func (s *NodeStates) Len() int { return len(s.fixed) }

// IsFixedTarget reports whether i must be part of every solution.
func (s *NodeStates) IsFixedTarget(i int) bool { return s.fixed[i] }

// IsVariableTarget reports whether i is an optional high-value node.
func (s *NodeStates) IsVariableTarget(i int) bool { return s.variable[i] }

// IsTarget reports whether i is a fixed or variable target.
func (s *NodeStates) IsTarget(i int) bool { return s.fixed[i] || s.variable[i] }

// IsRemoved reports whether i was eliminated by a reduction.
func (s *NodeStates) IsRemoved(i int) bool { return s.removed[i] }

// MarkFixedTarget makes i mandatory. A variable target promoted this way
// stops being variable.
func (s *NodeStates) MarkFixedTarget(i int) {
	s.fixed[i] = true
	s.variable[i] = false
}

// MarkVariableTarget flags i as optional high-value node. Fixed wins.
func (s *NodeStates) MarkVariableTarget(i int) {
	if !s.fixed[i] {
		s.variable[i] = true
	}
}

// MarkRemoved excludes i from further processing.
func (s *NodeStates) MarkRemoved(i int) { s.removed[i] = true }

// Remap returns states re-indexed by mapping (old index → new, -1 dropped).
func (s *NodeStates) Remap(mapping []int) *NodeStates {
	size := 0
	for _, m := range mapping {
		size = max(size, m+1)
	}
	out := NewNodeStates(size)
	for old, m := range mapping {
		if m < 0 {
			continue
		}
		out.fixed[m] = s.fixed[old]
		out.variable[m] = s.variable[old]
		out.removed[m] = s.removed[old]
	}

	return out
}
