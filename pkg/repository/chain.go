package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/pom"
)

// Chain consults repositories in order. The first hit wins, a miss falls
// through to the next repository, and any other error aborts the lookup.
type Chain []collect.Repository

func (ch Chain) Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error) {
	for _, r := range ch {
		n, err := r.Resolve(ctx, c)
		if err == nil {
			return n, nil
		}
		if !collect.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", collect.ErrNotFound, c, ch)
}

// LoadProject loads a raw POM from the first member that can read POMs, so a
// chain can serve as the [pom.Loader] for a project file on disk.
func (ch Chain) LoadProject(ctx context.Context, c artifact.Coordinate) (*pom.Project, error) {
	for _, r := range ch {
		l, ok := r.(pom.Loader)
		if !ok {
			continue
		}
		p, err := l.LoadProject(ctx, c)
		if err == nil {
			return p, nil
		}
		if !collect.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: pom %s in %s", collect.ErrNotFound, c, ch)
}

func (ch Chain) String() string {
	names := make([]string, len(ch))
	for i, r := range ch {
		names[i] = describe(r)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func describe(r collect.Repository) string {
	if s, ok := r.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", r)
}

var (
	_ collect.Repository = Chain(nil)
	_ pom.Loader         = Chain(nil)
)
