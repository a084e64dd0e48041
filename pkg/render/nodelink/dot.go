package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the depth and metadata in node labels.
	// When false, only the coordinate is shown.
	Detailed bool
	// EdgeScopes labels every edge with the child's effective scope.
	EdgeScopes bool
	// Conflicts adds the omitted versions to the diagram.
	Conflicts []collect.Conflict
}

var scopeColors = map[string]string{
	"compile":  "white",
	"runtime":  "lightcyan",
	"provided": "lightyellow",
	"test":     "mistyrose",
	"system":   "lavender",
}

// graphAttrs are emitted in order at the top of every diagram.
var graphAttrs = []string{
	`rankdir=TB`,
	`bgcolor="transparent"`,
	`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"]`,
	`ranksep=0.5`,
	`nodesep=0.3`,
}

type dotWriter struct {
	strings.Builder
}

func (w *dotWriter) line(format string, args ...any) {
	w.WriteString("  ")
	fmt.Fprintf(w, format, args...)
	w.WriteString(";\n")
}

// ToDOT converts a collected graph to Graphviz DOT source. Nodes of the
// same depth share a rank so the layout mirrors the resolution layers.
func ToDOT(g *dag.DAG, opts Options) string {
	root, _ := g.Meta()["root"].(string)

	var w dotWriter
	w.WriteString("digraph G {\n")
	for _, a := range graphAttrs {
		w.line("%s", a)
	}

	for _, row := range g.RowIDs() {
		w.WriteString("\n")
		for _, n := range g.NodesInRow(row) {
			w.line("%q [%s]", n.ID, strings.Join(nodeAttrs(n, opts.Detailed, n.ID == root), ", "))
		}
		if nodes := g.NodesInRow(row); row > 0 && len(nodes) > 1 {
			ids := make([]string, len(nodes))
			for i, n := range nodes {
				ids[i] = strconv.Quote(n.ID)
			}
			w.line("{ rank=same; %s }", strings.Join(ids, "; "))
		}
	}

	w.WriteString("\n")
	for _, e := range g.Edges() {
		if !opts.EdgeScopes {
			w.line("%q -> %q", e.From, e.To)
			continue
		}
		child, _ := g.Node(e.To)
		w.line("%q -> %q [label=%q, fontsize=10]", e.From, e.To, child.Meta["scope"])
	}

	if len(opts.Conflicts) > 0 {
		w.WriteString("\n")
	}
	for _, c := range opts.Conflicts {
		if len(c.Path) == 0 {
			continue
		}
		id := c.Loser.String() + " (omitted)"
		label := fmt.Sprintf("%s\nomitted for %s", c.Loser, c.Winner.Version)
		w.line("%q [label=%q, style=\"rounded,dashed\", fontcolor=grey40, color=grey60]", id, label)
		w.line("%q -> %q [style=dashed, color=grey60]", c.Path[len(c.Path)-1].String(), id)
	}

	w.WriteString("}\n")
	return w.String()
}

// nodeAttrs styles n by its recorded scope and optional flag. The root is
// drawn bold instead.
func nodeAttrs(n *dag.Node, detailed, root bool) []string {
	label := n.ID
	if detailed {
		lines := []string{n.ID, fmt.Sprintf("depth: %d", n.Row)}
		for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
			lines = append(lines, fmt.Sprintf("%s: %v", k, n.Meta[k]))
		}
		label = strings.Join(lines, "\n")
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if root {
		return append(attrs, "penwidth=2", `fontname="Helvetica-Bold"`)
	}
	if color, ok := scopeColors[fmt.Sprint(n.Meta["scope"])]; ok {
		attrs = append(attrs, "fillcolor="+color)
	}
	if opt, _ := n.Meta["optional"].(bool); opt {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	return attrs
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
