package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
)

func TestRepository_Resolve(t *testing.T) {
	common := artifact.NewCoordinate("org.acme", "common", "1").WithType("txt")
	client := common.WithClassifier("client").WithVersion("2")

	repo := New(artifact.NewNode(common), artifact.NewNode(client))

	n, err := repo.Resolve(context.Background(), common)
	require.NoError(t, err)
	require.Equal(t, common, n.Coordinate())

	n, err = repo.Resolve(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, client, n.Coordinate())

	// same GA, different classifier/type variant that was never added
	_, err = repo.Resolve(context.Background(), common.WithClassifier("client"))
	require.True(t, errors.Is(err, collect.ErrNotFound), "got %v", err)
	_, err = repo.Resolve(context.Background(), common.WithType("doc"))
	require.ErrorIs(t, err, collect.ErrNotFound)
}

func TestRepository_DefaultType(t *testing.T) {
	repo := New(artifact.NewNode(artifact.NewCoordinate("g", "a", "1")))
	_, err := repo.Resolve(context.Background(), artifact.Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	require.NoError(t, err)
}

func TestRepository_With(t *testing.T) {
	a := artifact.NewCoordinate("g", "a", "1")
	b := artifact.NewCoordinate("g", "b", "1")

	base := New(artifact.NewNode(a))
	ext := base.With(artifact.NewNode(b))

	require.Equal(t, 1, base.Len())
	require.Equal(t, 2, ext.Len())
	_, err := base.Resolve(context.Background(), b)
	require.ErrorIs(t, err, collect.ErrNotFound)
}

func TestRepository_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Resolve(ctx, artifact.NewCoordinate("g", "a", "1"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeTOML(t *testing.T) {
	src := `
[[artifact]]
coordinate = "org.acme:app:1"
dependencies = [
  { coordinate = "org.acme:lib:1" },
  { coordinate = "junit:junit:4.13", scope = "test" },
  { coordinate = "org.acme:extra:2", optional = true, exclusions = ["org.slf4j:*"] },
]
managed = [{ coordinate = "org.acme:util:3" }]

[[artifact]]
coordinate = "org.acme:lib:1"
`
	repo, err := DecodeTOML(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 2, repo.Len())

	app, err := repo.Resolve(context.Background(), artifact.MustParseCoordinate("org.acme:app:1"))
	require.NoError(t, err)

	deps := app.Dependencies()
	require.Len(t, deps, 3)
	require.Equal(t, artifact.ScopeCompile, deps[0].Scope)
	require.Equal(t, artifact.ScopeTest, deps[1].Scope)
	require.True(t, deps[2].Optional)
	require.Equal(t, []artifact.Exclusion{{GroupID: "org.slf4j", ArtifactID: "*"}}, deps[2].Exclusions)
	require.Len(t, app.Managed(), 1)
}

func TestDecodeTOML_Invalid(t *testing.T) {
	tests := []string{
		`[[artifact]]
coordinate = "not-a-coordinate"`,
		`[[artifact]]
coordinate = "g:a:1"
dependencies = [{ coordinate = "g:b:1", exclusions = ["nocolon"] }]`,
		`this is not toml`,
	}
	for _, src := range tests {
		_, err := DecodeTOML(strings.NewReader(src))
		require.Error(t, err)
	}
}
