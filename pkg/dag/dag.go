package dag

import (
	"errors"
	"fmt"
	"slices"
)

// Errors returned while building or validating a graph. Callers match them
// with errors.Is; the returned values carry the offending IDs.
var (
	ErrInvalidNodeID       = errors.New("node ID must not be empty")
	ErrDuplicateNodeID     = errors.New("duplicate node ID")
	ErrUnknownSourceNode   = errors.New("unknown source node")
	ErrUnknownTargetNode   = errors.New("unknown target node")
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
	ErrNonConsecutiveRows  = errors.New("edges must connect consecutive rows")
	ErrGraphHasCycle       = errors.New("graph contains a cycle")
)

// Metadata holds free-form attributes. Dependency graphs store the version,
// scope and optional flag of each artifact here, and the root coordinate at
// graph level.
type Metadata map[string]any

// Node is one recorded artifact. Row is its depth below the root.
type Node struct {
	ID   string
	Row  int
	Meta Metadata
}

// Edge points from a declaring artifact to a dependency it contributed.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

type vertex struct {
	node     *Node
	children []string
	parents  []string
}

// DAG is a row-layered directed graph. All iteration follows insertion
// order. Create one with New; a DAG must not be mutated concurrently.
type DAG struct {
	index  map[string]*vertex
	order  []*Node
	edges  []Edge
	layers [][]*Node
	meta   Metadata
}

// New returns an empty graph carrying meta.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{index: make(map[string]*vertex), meta: meta}
}

// Meta returns the graph-level metadata.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode stores n in row n.Row. Negative rows are rejected with
// ErrInvalidNodeID.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case n.Row < 0:
		return fmt.Errorf("%w: %s has negative row %d", ErrInvalidNodeID, n.ID, n.Row)
	}
	if _, dup := d.index[n.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.index[n.ID] = &vertex{node: node}
	d.order = append(d.order, node)
	for len(d.layers) <= n.Row {
		d.layers = append(d.layers, nil)
	}
	d.layers[n.Row] = append(d.layers[n.Row], node)
	return nil
}

// AddEdge links two existing nodes. Row adjacency is checked by Validate.
func (d *DAG) AddEdge(e Edge) error {
	from, ok := d.index[e.From]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	to, ok := d.index[e.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	from.children = append(from.children, e.To)
	to.parents = append(to.parents, e.From)
	return nil
}

// Node looks up a node by ID.
func (d *DAG) Node(id string) (*Node, bool) {
	v, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return v.node, true
}

// Nodes returns every node in insertion order.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// Edges returns every edge in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.order) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs id has edges to. The slice must not be modified.
func (d *DAG) Children(id string) []string {
	if v, ok := d.index[id]; ok {
		return v.children
	}
	return nil
}

// Parents returns the IDs with edges to id. In a collected dependency tree
// this holds at most one ID.
func (d *DAG) Parents(id string) []string {
	if v, ok := d.index[id]; ok {
		return v.parents
	}
	return nil
}

// NodesInRow returns the nodes recorded at depth row.
func (d *DAG) NodesInRow(row int) []*Node {
	if row < 0 || row >= len(d.layers) {
		return nil
	}
	return d.layers[row]
}

// RowIDs returns the non-empty rows in ascending order.
func (d *DAG) RowIDs() []int {
	var ids []int
	for row, nodes := range d.layers {
		if len(nodes) > 0 {
			ids = append(ids, row)
		}
	}
	return ids
}

// MaxRow returns the deepest occupied row, or 0 for an empty graph.
func (d *DAG) MaxRow() int {
	for row := len(d.layers) - 1; row >= 0; row-- {
		if len(d.layers[row]) > 0 {
			return row
		}
	}
	return 0
}

// Sources returns the nodes nothing depends on.
func (d *DAG) Sources() []*Node {
	return d.filter(func(v *vertex) bool { return len(v.parents) == 0 })
}

// Sinks returns the leaves: nodes that contributed no dependencies.
func (d *DAG) Sinks() []*Node {
	return d.filter(func(v *vertex) bool { return len(v.children) == 0 })
}

func (d *DAG) filter(keep func(*vertex) bool) []*Node {
	var out []*Node
	for _, n := range d.order {
		if keep(d.index[n.ID]) {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits the subtree under id depth first in edge order, passing each
// node's distance from id. Returning false prunes the node's children.
func (d *DAG) Walk(id string, fn func(n *Node, level int) bool) {
	v, ok := d.index[id]
	if !ok {
		return
	}
	type frame struct {
		v     *vertex
		level int
	}
	stack := []frame{{v, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.v.node, f.level) {
			continue
		}
		for i := len(f.v.children) - 1; i >= 0; i-- {
			if c, ok := d.index[f.v.children[i]]; ok {
				stack = append(stack, frame{c, f.level + 1})
			}
		}
	}
}

// Validate reports the first edge whose endpoints are missing or not in
// consecutive rows, then checks for cycles.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		from, okFrom := d.index[e.From]
		to, okTo := d.index[e.To]
		if !okFrom || !okTo {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidEdgeEndpoint, e.From, e.To)
		}
		if to.node.Row != from.node.Row+1 {
			return fmt.Errorf("%w: %s (row %d) -> %s (row %d)",
				ErrNonConsecutiveRows, e.From, from.node.Row, e.To, to.node.Row)
		}
	}
	return d.detectCycles()
}

// detectCycles runs Kahn's algorithm; any node left with unresolved parents
// sits on a cycle.
func (d *DAG) detectCycles() error {
	pending := make(map[string]int, len(d.order))
	var ready []string
	for _, n := range d.order {
		pending[n.ID] = len(d.index[n.ID].parents)
		if pending[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	seen := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		seen++
		for _, c := range d.index[id].children {
			pending[c]--
			if pending[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	if seen < len(d.order) {
		return ErrGraphHasCycle
	}
	return nil
}
