// Package remote resolves artifacts from an HTTP Maven repository such as
// Maven Central.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/integrations"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	"github.com/matzehuels/depcollect/pkg/repository"
)

// Source adapts a [maven.Client] to [repository.Source].
type Source struct {
	client  *maven.Client
	refresh bool
}

// New returns a source reading from client.
func New(client *maven.Client) *Source {
	return &Source{client: client}
}

// WithRefresh returns a copy that bypasses cached POMs.
func (s *Source) WithRefresh(refresh bool) *Source {
	return &Source{client: s.client, refresh: refresh}
}

// NewRepository is shorthand for wrapping a source for client in a
// [repository.POMRepository].
func NewRepository(client *maven.Client, refresh bool, logger func(string, ...any)) *repository.POMRepository {
	return repository.NewPOMRepository(New(client).WithRefresh(refresh), logger)
}

func (s *Source) String() string { return s.client.BaseURL() }

func (s *Source) FetchPOM(ctx context.Context, c artifact.Coordinate) ([]byte, error) {
	data, err := s.client.FetchPOM(ctx, c, s.refresh)
	if err != nil {
		return nil, notFound(err, c, s)
	}
	return data, nil
}

func (s *Source) HasArtifact(ctx context.Context, c artifact.Coordinate) (bool, error) {
	return s.client.HasArtifact(ctx, c)
}

func notFound(err error, c artifact.Coordinate, s *Source) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: %s in %s", collect.ErrNotFound, c, s)
	}
	return err
}

var _ repository.Source = (*Source)(nil)
