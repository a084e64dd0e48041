package repository

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/pom"
)

// Source provides raw repository files. Misses must wrap
// [collect.ErrNotFound].
type Source interface {
	// FetchPOM returns the POM shared by every classifier and type of c.
	FetchPOM(ctx context.Context, c artifact.Coordinate) ([]byte, error)
	// HasArtifact reports whether the file for c's classifier and type exists.
	HasArtifact(ctx context.Context, c artifact.Coordinate) (bool, error)
	// String identifies the source in logs and cache keys.
	String() string
}

// POMRepository resolves coordinates by reading POMs from a Source and
// building their effective model. Parent POMs and imported BOMs are read
// from the same source.
//
// Parsed POMs are memoized for the lifetime of the repository, and
// concurrent loads of the same POM share one fetch.
type POMRepository struct {
	src    Source
	logger func(string, ...any)

	group singleflight.Group
	mu    sync.RWMutex
	poms  map[artifact.Coordinate]*pom.Project
}

// NewPOMRepository wraps src. logger receives warnings about skipped
// dependencies and may be nil.
func NewPOMRepository(src Source, logger func(string, ...any)) *POMRepository {
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &POMRepository{
		src:    src,
		logger: logger,
		poms:   make(map[artifact.Coordinate]*pom.Project),
	}
}

func (r *POMRepository) String() string { return r.src.String() }

// Resolve returns the node for c. Coordinates with a classifier, or a type
// other than jar or pom, also require the matching artifact file to exist.
func (r *POMRepository) Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error) {
	if c.Type == "" {
		c.Type = artifact.DefaultType
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.Classifier != "" || (c.Type != artifact.DefaultType && c.Type != "pom") {
		ok, err := r.src.HasArtifact(ctx, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", collect.ErrNotFound, c, r.src)
		}
	}

	raw, err := r.LoadProject(ctx, c)
	if err != nil {
		return nil, err
	}
	eff, err := raw.Effective(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("effective pom of %s: %w", c, err)
	}

	node, skipped := eff.NodeFor(c)
	for _, s := range skipped {
		d := s.Dependency
		r.logger("%s: skipped dependency %s:%s:%s: %s", c, d.GroupID, d.ArtifactID, d.Version, s.Reason)
	}
	return node, nil
}

// LoadProject implements [pom.Loader] over the source.
func (r *POMRepository) LoadProject(ctx context.Context, c artifact.Coordinate) (*pom.Project, error) {
	key := artifact.NewCoordinate(c.GroupID, c.ArtifactID, c.Version).WithType("pom")

	r.mu.RLock()
	p, ok := r.poms[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		data, err := r.src.FetchPOM(ctx, key)
		if err != nil {
			return nil, err
		}
		p, err := pom.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		r.mu.Lock()
		r.poms[key] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pom.Project), nil
}

var (
	_ collect.Repository = (*POMRepository)(nil)
	_ pom.Loader         = (*POMRepository)(nil)
)
