// Package model loads attack trees from declarative YAML files.
//
// A model file names the tree, says whether it should be evaluated
// analytically or simulated, and nests the nodes under "tree":
//
//	name: bank-vault
//	analytic: false
//	runs: 10000
//	tree:
//	  kind: or
//	  children:
//	    - name: pick lock
//	      kind: threat
//	      capability: 3
//	      difficulty: 2
//	      children:
//	        - {name: alarm, kind: measure, capability: 4, difficulty: 3}
//
// Group nodes (or, and, seq) may omit their name. Frequency defaults to 1.
package model

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// ErrInvalidModel is returned for model files that cannot be turned into a tree
var ErrInvalidModel = errors.New("invalid model")

// Document is the on-disk form of a model
type Document struct {
	Name     string   `yaml:"name"`
	Analytic bool     `yaml:"analytic"`
	Runs     int      `yaml:"runs,omitempty"`
	Tree     *NodeDoc `yaml:"tree"`
}

// NodeDoc is the on-disk form of one node
type NodeDoc struct {
	Name       string     `yaml:"name,omitempty"`
	Kind       string     `yaml:"kind"`
	Frequency  *float64   `yaml:"frequency,omitempty"`
	Capability int        `yaml:"capability,omitempty"`
	Difficulty int        `yaml:"difficulty,omitempty"`
	Children   []*NodeDoc `yaml:"children,omitempty"`
}

// Model is a loaded attack tree together with its run settings
type Model struct {
	Name     string
	Analytic bool
	// Runs is zero when the file leaves the campaign size to the driver
	Runs     int
	Root     *tree.Node
	Registry *tree.Registry
}

// CountByKind returns the number of nodes of each kind
func (m *Model) CountByKind() map[string]int {
	counts := make(map[string]int)
	for _, n := range m.Registry.Nodes() {
		counts[n.Kind.String()]++
	}
	return counts
}

// Load reads and builds the model file at path
func Load(path string) (*Model, error) {
	return (&Loader{}).Load(path)
}

// Parse builds a model from YAML data
func Parse(data []byte) (*Model, error) {
	return (&Loader{}).Parse(data)
}

// Decode reads a Document without building the tree
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidModel)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return &doc, nil
}

// Build turns a decoded document into a tree registered in a fresh registry
func Build(doc *Document) (*Model, error) {
	if doc.Tree == nil {
		return nil, fmt.Errorf("%w: missing tree", ErrInvalidModel)
	}
	if doc.Runs < 0 {
		return nil, fmt.Errorf("%w: runs must not be negative, got %d", ErrInvalidModel, doc.Runs)
	}

	reg := tree.NewRegistry()
	root, err := build(reg, doc.Tree, "tree")
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:     doc.Name,
		Analytic: doc.Analytic,
		Runs:     doc.Runs,
		Root:     root,
		Registry: reg,
	}, nil
}

// build creates children before parents, so creation order is post-order
func build(reg *tree.Registry, nd *NodeDoc, path string) (*tree.Node, error) {
	if nd == nil {
		return nil, fmt.Errorf("%w: %s: empty node", ErrInvalidModel, path)
	}

	kind, err := tree.ParseKind(nd.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModel, path, err)
	}

	name := nd.Name
	if name == "" {
		if !kind.IsGroup() {
			return nil, fmt.Errorf("%w: %s: %s node needs a name", ErrInvalidModel, path, kind)
		}
		name = kind.String()
	}

	children := make([]*tree.Node, 0, len(nd.Children))
	for i, c := range nd.Children {
		child, err := build(reg, c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	freq := tree.DefaultFrequency
	if nd.Frequency != nil {
		freq = *nd.Frequency
	}

	n, err := reg.NewNode(tree.Spec{
		Name:       name,
		Kind:       kind,
		Frequency:  freq,
		Capability: nd.Capability,
		Difficulty: nd.Difficulty,
		Children:   children,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModel, path, err)
	}
	return n, nil
}

// Encode writes the tree rooted at root back out as a document
func Encode(w io.Writer, m *Model) error {
	doc := &Document{
		Name:     m.Name,
		Analytic: m.Analytic,
		Runs:     m.Runs,
		Tree:     toDoc(m.Root),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func toDoc(n *tree.Node) *NodeDoc {
	nd := &NodeDoc{
		Kind:       n.Kind.String(),
		Capability: n.Capability,
		Difficulty: n.Difficulty,
	}
	if !n.Kind.IsGroup() || n.Name != n.Kind.String() {
		nd.Name = n.Name
	}
	if n.Frequency != tree.DefaultFrequency {
		f := n.Frequency
		nd.Frequency = &f
	}
	for _, c := range n.Children {
		nd.Children = append(nd.Children, toDoc(c))
	}
	return nd
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return data, nil
}
