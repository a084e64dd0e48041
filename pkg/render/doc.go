// Package render groups the visual renderers for collected dependency
// graphs. The only renderer today is [nodelink], which draws the resolved
// tree as a Graphviz node-link diagram.
//
// [nodelink]: github.com/matzehuels/depcollect/pkg/render/nodelink
package render
