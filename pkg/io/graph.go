package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depcollect/pkg/dag"
)

// ErrNoRoot is returned by [ReadJSON] when the root is missing from the nodes.
var ErrNoRoot = errors.New("graph has no root node")

// treeJSON is the file form of a resolved tree. Node fields mirror the
// metadata the collector attaches to dag nodes.
type treeJSON struct {
	Root  string     `json:"root"`
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type nodeJSON struct {
	ID       string `json:"id"`
	Version  string `json:"version,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Depth    int    `json:"depth"`
	Optional bool   `json:"optional,omitempty"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a resolved tree as indented JSON. The output can be
// read back with [ReadJSON].
func WriteJSON(g *dag.DAG, w io.Writer) error {
	root, _ := g.Meta()["root"].(string)
	out := treeJSON{
		Root:  root,
		Nodes: make([]nodeJSON, 0, g.NodeCount()),
		Edges: make([]edgeJSON, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		nd := nodeJSON{ID: n.ID, Depth: n.Row}
		nd.Version, _ = n.Meta["version"].(string)
		nd.Scope, _ = n.Meta["scope"].(string)
		nd.Optional, _ = n.Meta["optional"].(bool)
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a tree written by [WriteJSON] and checks that it is a
// well-formed layered graph rooted at its "root" node. Errors name the node
// or edge that caused them and wrap the dag package's sentinel errors.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var in treeJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(dag.Metadata{"root": in.Root})
	for _, n := range in.Nodes {
		meta := dag.Metadata{}
		if n.Version != "" {
			meta["version"] = n.Version
		}
		if n.Scope != "" {
			meta["scope"] = n.Scope
		}
		if n.Optional {
			meta["optional"] = true
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Row: n.Depth, Meta: meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range in.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	if _, ok := g.Node(in.Root); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRoot, in.Root)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ExportJSON writes a resolved tree to a JSON file at path.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportJSON reads a JSON tree file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
