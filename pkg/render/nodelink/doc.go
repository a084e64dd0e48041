// Package nodelink renders dependency graphs as node-link diagrams.
//
// # Usage
//
// Convert a collected graph to DOT, then render it in-process:
//
//	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Conflicts: res.Conflicts})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Styling
//
// The root is drawn bold. Nodes are tinted by effective scope, optional
// dependencies get a dashed outline, and omitted conflict versions, when
// requested, hang off the artifact that declared them as grey dashed nodes.
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) so rows match the
// dependency depth.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system install is required.
package nodelink
