package collect

import (
	"context"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// Repository describes artifacts by coordinate.
//
// Resolve returns the node for c, or an error wrapping [ErrNotFound] when the
// coordinate (including its classifier/type variant) does not exist.
// Implementations must treat coordinates that differ only in classifier or
// type as distinct artifacts.
type Repository interface {
	Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error)
}

// RepositoryFunc adapts a function to the [Repository] interface.
type RepositoryFunc func(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error)

// Resolve calls f(ctx, c).
func (f RepositoryFunc) Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error) {
	return f(ctx, c)
}
