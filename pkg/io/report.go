package io

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/dag"
)

// Output formats accepted by [WriteReport].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTree = "tree"
)

// Formats lists the supported report formats.
var Formats = []string{FormatText, FormatJSON, FormatTree}

// Report is the JSON form of a collection result.
type Report struct {
	Root         string       `json:"root"`
	Dependencies []Dependency `json:"dependencies"`
	Conflicts    []Conflict   `json:"conflicts,omitempty"`
}

// Dependency is one resolved entry of a [Report].
type Dependency struct {
	Coordinate string `json:"coordinate"`
	Scope      string `json:"scope"`
	Depth      int    `json:"depth"`
	Optional   bool   `json:"optional,omitempty"`
}

// Conflict is one omitted version of a [Report].
type Conflict struct {
	Key    string   `json:"key"`
	Winner string   `json:"winner"`
	Loser  string   `json:"loser"`
	Kind   string   `json:"kind"`
	Path   []string `json:"path"`
}

// NewReport converts res into its JSON form.
func NewReport(res *collect.Result) Report {
	r := Report{
		Root:         res.Root.String(),
		Dependencies: dependencies(res.Dependencies),
	}
	for _, c := range res.Conflicts {
		path := make([]string, len(c.Path))
		for i, p := range c.Path {
			path[i] = p.String()
		}
		r.Conflicts = append(r.Conflicts, Conflict{
			Key:    c.Key.String(),
			Winner: c.Winner.String(),
			Loser:  c.Loser.String(),
			Kind:   c.Kind.String(),
			Path:   path,
		})
	}
	return r
}

// WriteReport renders res to w in the given format.
func WriteReport(w io.Writer, res *collect.Result, format string) error {
	switch format {
	case FormatText, "":
		for _, d := range res.Dependencies {
			if _, err := fmt.Fprintln(w, d.String()); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReport(res))
	case FormatTree:
		return WriteTree(w, res.Graph)
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// WriteTree renders g as an indented tree starting at its root, in the
// style of mvn dependency:tree.
func WriteTree(w io.Writer, g *dag.DAG) error {
	root, _ := g.Meta()["root"].(string)
	if _, ok := g.Node(root); !ok {
		return fmt.Errorf("graph has no root node")
	}
	var b strings.Builder
	b.WriteString(root)
	b.WriteByte('\n')
	writeChildren(&b, g, root, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeChildren(b *strings.Builder, g *dag.DAG, id, indent string) {
	children := g.Children(id)
	for i, child := range children {
		last := i == len(children)-1
		branch, next := "+- ", "|  "
		if last {
			branch, next = `\- `, "   "
		}
		b.WriteString(indent)
		b.WriteString(branch)
		b.WriteString(treeLabel(g, child))
		b.WriteByte('\n')
		writeChildren(b, g, child, indent+next)
	}
}

func treeLabel(g *dag.DAG, id string) string {
	n, _ := g.Node(id)
	label := id
	if scope, ok := n.Meta["scope"].(string); ok {
		label += ":" + scope
	}
	if opt, _ := n.Meta["optional"].(bool); opt {
		label += " (optional)"
	}
	return label
}

// WriteResolved encodes a flat dependency list as an indented JSON array.
func WriteResolved(w io.Writer, deps []artifact.Resolved) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dependencies(deps))
}

func dependencies(deps []artifact.Resolved) []Dependency {
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		out[i] = Dependency{
			Coordinate: d.Coordinate.String(),
			Scope:      d.Scope.String(),
			Depth:      d.Depth,
			Optional:   d.Optional,
		}
	}
	return out
}
