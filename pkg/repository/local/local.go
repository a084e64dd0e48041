// Package local resolves artifacts from a Maven local repository directory,
// typically ~/.m2/repository.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	"github.com/matzehuels/depcollect/pkg/repository"
)

// Source reads files laid out in the Maven 2 repository layout.
type Source struct {
	root string
}

// New returns a source rooted at dir.
func New(dir string) *Source {
	return &Source{root: dir}
}

// NewRepository wraps the directory in a [repository.POMRepository].
func NewRepository(dir string, logger func(string, ...any)) *repository.POMRepository {
	return repository.NewPOMRepository(New(dir), logger)
}

// DefaultDir returns ~/.m2/repository.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

func (s *Source) String() string { return s.root }

func (s *Source) FetchPOM(ctx context.Context, c artifact.Coordinate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(maven.POMPath(c)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s in %s", collect.ErrNotFound, c, s.root)
	}
	return data, err
}

func (s *Source) HasArtifact(ctx context.Context, c artifact.Coordinate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(maven.ArtifactPath(c)))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, err
}

func (s *Source) path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

var _ repository.Source = (*Source)(nil)
