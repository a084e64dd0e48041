// Package memory provides an in-memory [collect.Repository].
//
// It is built once from finished nodes and never mutated afterwards, which
// makes it a convenient fixture for tests and offline experiments:
//
//	repo := memory.New(
//	    artifact.NewNode(app, artifact.NewDependency(lib, "")),
//	    artifact.NewNode(lib),
//	)
//
// Graphs can also be described in TOML and loaded with [LoadTOML].
//
// [collect.Repository]: github.com/matzehuels/depcollect/pkg/collect.Repository
package memory

import (
	"context"
	"fmt"
	"maps"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
)

// Repository resolves coordinates from a fixed set of nodes.
// It is safe for concurrent use.
type Repository struct {
	nodes map[artifact.Coordinate]*artifact.Node
}

// New creates a repository holding the given nodes. A later node with the
// same coordinate replaces an earlier one.
func New(nodes ...*artifact.Node) *Repository {
	r := &Repository{nodes: make(map[artifact.Coordinate]*artifact.Node, len(nodes))}
	for _, n := range nodes {
		r.nodes[normalize(n.Coordinate())] = n
	}
	return r
}

// With returns a new repository containing r's nodes plus nodes.
func (r *Repository) With(nodes ...*artifact.Node) *Repository {
	out := &Repository{nodes: maps.Clone(r.nodes)}
	for _, n := range nodes {
		out.nodes[normalize(n.Coordinate())] = n
	}
	return out
}

// Len returns the number of artifacts in the repository.
func (r *Repository) Len() int { return len(r.nodes) }

// Resolve returns the node stored for c.
// Coordinates differing only in classifier or type are distinct entries.
func (r *Repository) Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := r.nodes[normalize(c)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", collect.ErrNotFound, c)
	}
	return n, nil
}

func normalize(c artifact.Coordinate) artifact.Coordinate {
	if c.Type == "" {
		c.Type = artifact.DefaultType
	}
	return c
}

var _ collect.Repository = (*Repository)(nil)
