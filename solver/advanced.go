package solver

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/katalvlaran/treeplan/skilltree"
)

var (
	// wildcardRe finds "{n}" placeholders in attribute names.
	wildcardRe = regexp.MustCompile(`\{\d+\}`)
	// travelRe matches the single stat of a travel node.
	travelRe = regexp.MustCompile(`\+# to (Strength|Intelligence|Dexterity)`)
)

// travelValue is the stat value a travel node grants.
const travelValue = 10

// Constraint asks for the total of one attribute to reach Target. Attribute
// may contain "{n}" wildcards; every matching tree attribute then counts.
type Constraint struct {
	Attribute string
	Target    float64
	Weight    float64
	// Minimum marks the target as a hard floor; unmet minimums are reported
	// in Result.Unsatisfied.
	Minimum bool
}

// Condition decides whether a resolved pseudo attribute applies. groups are
// the substrings matched by the name's wildcards, in order.
type Condition func(groups []string) bool

// GroupsEqual returns a Condition accepting exactly the given wildcard
// values. An empty value accepts anything.
func GroupsEqual(values ...string) Condition {
	return func(groups []string) bool {
		for i, v := range values {
			if v != "" && (i >= len(groups) || groups[i] != v) {
				return false
			}
		}
		return true
	}
}

// PseudoAttribute is one attribute feeding a pseudo constraint.
type PseudoAttribute struct {
	Name       string
	Multiplier float64
	// Condition filters wildcard resolutions (or the plain name, with no
	// groups); nil accepts all.
	Condition Condition
}

// PseudoConstraint sums several attributes, each scaled by its multiplier,
// against one target.
type PseudoConstraint struct {
	Name       string
	Attributes []PseudoAttribute
	Target     float64
	Weight     float64
	Minimum    bool
}

// AttributeExpander rewrites a node's attributes before they are matched,
// e.g. to split hybrid stats. It must not modify its argument.
type AttributeExpander func(attrs map[string][]float64) map[string][]float64

// AdvancedSettings configures the constraint strategy.
type AdvancedSettings struct {
	Constraints       []Constraint
	PseudoConstraints []PseudoConstraint
	// InitialAttributes are present regardless of the chosen nodes.
	InitialAttributes map[string]float64
	// Expander defaults to the identity.
	Expander AttributeExpander
	// Scoring constants; zero selects the Default* values.
	CSVWeightMultiplier float64
	OverBudgetWeight    float64
	UnderBudgetFactor   float64
}

type constraintSpec struct {
	name    string
	target  float64
	weight  float64
	minimum bool
}

// link routes one attribute into one constraint with a multiplier.
type link struct {
	constraint int
	multiplier float64
}

type contribution struct {
	constraint int
	value      float64
}

// Advanced is the Strategy scoring trees by attribute constraints: the
// product of every constraint's CSV times a point-budget factor.
type Advanced struct {
	tree        *skilltree.Tree
	totalPoints int
	constraints []constraintSpec
	links       map[string][]link
	nodeAttrs   map[skilltree.NodeID][]contribution
	travel      skilltree.NodeSet

	initialAttrs []float64
	fixedNodes   skilltree.NodeSet
	fixedAttrs   []float64

	k, overWeight, underFactor float64
}

var (
	_ Strategy = (*Advanced)(nil)
	_ Reporter = (*Advanced)(nil)
)

// NewAdvanced resolves constraints against tree's attribute names and
// indexes every node's contributions.
//
// Error Conditions:
//   - ErrInvalidSettings : totalPoints ≤ 0, a target ≤ 0 or a negative weight.
func NewAdvanced(tree *skilltree.Tree, totalPoints int, s AdvancedSettings) (*Advanced, error) {
	if totalPoints <= 0 {
		return nil, fmt.Errorf("NewAdvanced: TotalPoints=%d: %w", totalPoints, ErrInvalidSettings)
	}
	a := &Advanced{
		tree:        tree,
		totalPoints: totalPoints,
		links:       make(map[string][]link),
		nodeAttrs:   make(map[skilltree.NodeID][]contribution),
		travel:      skilltree.NewNodeSet(),
		fixedNodes:  skilltree.NewNodeSet(),
		k:           orDefault(s.CSVWeightMultiplier, DefaultCSVWeightMultiplier),
		overWeight:  orDefault(s.OverBudgetWeight, DefaultOverBudgetWeight),
		underFactor: orDefault(s.UnderBudgetFactor, DefaultUnderBudgetFactor),
	}

	// 1. Number the constraints and route attribute names to them.
	resolver := newWildcardResolver(tree.AttributeNames())
	for _, c := range s.Constraints {
		idx, err := a.addConstraint(c.Attribute, c.Target, c.Weight, c.Minimum)
		if err != nil {
			return nil, err
		}
		for _, m := range resolver.resolve(c.Attribute) {
			a.links[m.name] = append(a.links[m.name], link{constraint: idx, multiplier: 1})
		}
	}
	for _, pc := range s.PseudoConstraints {
		idx, err := a.addConstraint(pc.Name, pc.Target, pc.Weight, pc.Minimum)
		if err != nil {
			return nil, err
		}
		for _, attr := range pc.Attributes {
			for _, m := range resolver.resolve(attr.Name) {
				if attr.Condition == nil || attr.Condition(m.groups) {
					a.links[m.name] = append(a.links[m.name], link{constraint: idx, multiplier: attr.Multiplier})
				}
			}
		}
	}

	// 2. Node contributions and travel nodes.
	expand := s.Expander
	if expand == nil {
		expand = func(attrs map[string][]float64) map[string][]float64 { return attrs }
	}
	for _, id := range tree.IDs() {
		n, _ := tree.Node(id)
		attrs := expand(n.Attributes)
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			// Multi-valued stats count with their first value.
			if len(attrs[name]) == 0 {
				continue
			}
			for _, l := range a.links[name] {
				a.nodeAttrs[id] = append(a.nodeAttrs[id], contribution{l.constraint, attrs[name][0] * l.multiplier})
			}
		}
		if isTravel(n) {
			a.travel.Add(id)
		}
	}

	// 3. Initial attributes.
	a.initialAttrs = make([]float64, len(a.constraints))
	for name, v := range s.InitialAttributes {
		for _, l := range a.links[name] {
			a.initialAttrs[l.constraint] += v * l.multiplier
		}
	}
	a.fixedAttrs = slices.Clone(a.initialAttrs)

	return a, nil
}

func (a *Advanced) addConstraint(name string, target, weight float64, minimum bool) (int, error) {
	if target <= 0 {
		return 0, fmt.Errorf("NewAdvanced: constraint %q target %g ≤ 0: %w", name, target, ErrInvalidSettings)
	}
	if weight < 0 {
		return 0, fmt.Errorf("NewAdvanced: constraint %q weight %g < 0: %w", name, weight, ErrInvalidSettings)
	}
	a.constraints = append(a.constraints, constraintSpec{name: name, target: target, weight: weight, minimum: minimum})

	return len(a.constraints) - 1, nil
}

func isTravel(n *skilltree.Node) bool {
	if len(n.Attributes) != 1 {
		return false
	}
	for name, values := range n.Attributes {
		if !travelRe.MatchString(name) {
			return false
		}
		for _, v := range values {
			if int(v) == travelValue {
				return true
			}
		}
	}

	return false
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}

	return v
}

// IsTravel reports whether id is a travel node.
func (a *Advanced) IsTravel(id skilltree.NodeID) bool { return a.travel.Has(id) }

// MustIncludeNodeGroup holds for nodes with constrained stats that are not
// travel nodes.
func (a *Advanced) MustIncludeNodeGroup(n *skilltree.Node) bool {
	return len(a.nodeAttrs[n.ID]) > 0 && !a.travel.Has(n.ID)
}

// IncludeNodeInSearchGraph rejects keystones; checked keystones are let in
// by the session.
func (a *Advanced) IncludeNodeInSearchGraph(n *skilltree.Node) bool {
	return !n.IsKeystone()
}

// IsVariableTarget holds for nodes with constrained stats that are not
// travel nodes.
func (a *Advanced) IsVariableTarget(n *skilltree.Node) bool {
	return a.MustIncludeNodeGroup(n)
}

// SearchSpaceReady pre-sums the stats of the nodes every solution holds,
// on top of the initial attributes. A later call replaces the earlier one.
func (a *Advanced) SearchSpaceReady(fixed skilltree.NodeSet) {
	a.fixedNodes = skilltree.NewNodeSet()
	a.fixedNodes.Union(fixed)
	a.fixedAttrs = slices.Clone(a.initialAttrs)
	for id := range fixed {
		for _, c := range a.nodeAttrs[id] {
			a.fixedAttrs[c.constraint] += c.value
		}
	}
}

// totals starts from the pre-summed fixed stats when used holds every fixed
// node, and from the initial attributes otherwise.
func (a *Advanced) totals(used skilltree.NodeSet) []float64 {
	base, skip := a.fixedAttrs, a.fixedNodes
	for id := range a.fixedNodes {
		if !used.Has(id) {
			base, skip = a.initialAttrs, nil
			break
		}
	}
	totals := slices.Clone(base)
	for id := range used {
		if skip.Has(id) {
			continue
		}
		for _, c := range a.nodeAttrs[id] {
			totals[c.constraint] += c.value
		}
	}

	return totals
}

// Fitness is the product of every constraint's CSV and the budget factor,
// floored at 0. Root nodes are not charged against the budget.
func (a *Advanced) Fitness(used skilltree.NodeSet) float64 {
	totals := a.totals(used)
	score := 1.0
	for i, c := range a.constraints {
		score *= CSV(totals[i], c.weight, c.target, a.k)
	}
	score *= budgetFactor(usedPoints(a.tree, used), a.totalPoints, a.overWeight, a.underFactor, a.k)

	return max(score, 0)
}

// Unsatisfied names the minimum constraints whose total stays below target.
func (a *Advanced) Unsatisfied(used skilltree.NodeSet) []string {
	totals := a.totals(used)
	var out []string
	for i, c := range a.constraints {
		if c.minimum && totals[i] < c.target {
			out = append(out, c.name)
		}
	}

	return out
}

// Totals returns the attribute total of every constraint, in declaration
// order (plain constraints first, then pseudo constraints).
func (a *Advanced) Totals(used skilltree.NodeSet) []float64 { return a.totals(used) }

// usedPoints counts the non-root ids of used.
func usedPoints(tree *skilltree.Tree, used skilltree.NodeSet) int {
	count := 0
	for id := range used {
		if n, ok := tree.Node(id); ok && !n.IsRoot() {
			count++
		}
	}

	return count
}

// wildcardMatch is one tree attribute matched by a name, with the
// substrings its wildcards captured.
type wildcardMatch struct {
	name   string
	groups []string
}

type wildcardResolver struct {
	names []string
	cache map[string][]wildcardMatch
}

func newWildcardResolver(names []string) *wildcardResolver {
	return &wildcardResolver{names: names, cache: make(map[string][]wildcardMatch)}
}

// resolve returns the attribute names matching pattern. A pattern without
// wildcards matches itself only, whether or not the tree uses it.
func (r *wildcardResolver) resolve(pattern string) []wildcardMatch {
	if !wildcardRe.MatchString(pattern) {
		return []wildcardMatch{{name: pattern}}
	}
	if m, ok := r.cache[pattern]; ok {
		return m
	}

	parts := wildcardRe.Split(pattern, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, "(.*)") + "$")
	var out []wildcardMatch
	for _, name := range r.names {
		if sub := re.FindStringSubmatch(name); sub != nil {
			out = append(out, wildcardMatch{name: name, groups: sub[1:]})
		}
	}
	r.cache[pattern] = out

	return out
}
