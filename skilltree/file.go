package skilltree

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileNode is the on-disk shape of a node. JSON is accepted as well since
// every JSON document is valid YAML.
type fileNode struct {
	ID         NodeID               `yaml:"id" json:"id"`
	Name       string               `yaml:"name,omitempty" json:"name,omitempty"`
	Group      int                  `yaml:"group" json:"group"`
	Kind       string               `yaml:"kind,omitempty" json:"kind,omitempty"`
	Neighbors  []NodeID             `yaml:"neighbors,flow" json:"neighbors"`
	Attributes map[string][]float64 `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

type fileTree struct {
	Nodes []fileNode `yaml:"nodes" json:"nodes"`
}

// Load reads a YAML or JSON tree file.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Load(%s): %w", path, err)
	}

	return t, nil
}

// Decode parses a tree document from r.
func Decode(r io.Reader) (*Tree, error) {
	var doc fileTree
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTree
		}
		return nil, fmt.Errorf("Decode: %w", err)
	}

	nodes := make([]Node, 0, len(doc.Nodes))
	for _, fn := range doc.Nodes {
		kind, err := ParseKind(fn.Kind)
		if err != nil {
			return nil, fmt.Errorf("Decode: node %d: %w", fn.ID, err)
		}
		nodes = append(nodes, Node{
			ID:         fn.ID,
			Name:       fn.Name,
			Group:      fn.Group,
			Kind:       kind,
			Neighbors:  fn.Neighbors,
			Attributes: fn.Attributes,
		})
	}

	return New(nodes)
}

// Encode writes t as YAML, nodes in id order.
func (t *Tree) Encode(w io.Writer) error {
	doc := fileTree{Nodes: make([]fileNode, 0, len(t.ids))}
	for _, id := range t.ids {
		n := t.nodes[id]
		fn := fileNode{
			ID:         n.ID,
			Name:       n.Name,
			Group:      n.Group,
			Neighbors:  n.Neighbors,
			Attributes: n.Attributes,
		}
		if n.Kind != KindNormal {
			fn.Kind = n.Kind.String()
		}
		doc.Nodes = append(doc.Nodes, fn)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("Encode: %w", err)
	}

	return enc.Close()
}
