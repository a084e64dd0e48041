package io

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/dag"
	"github.com/matzehuels/depcollect/pkg/repository/memory"
)

func collectSample(t *testing.T) *collect.Result {
	t.Helper()
	c := artifact.MustParseCoordinate
	repo := memory.New(
		artifact.NewNode(c("g:app:1"),
			artifact.NewDependency(c("g:a:1"), ""),
			artifact.NewDependency(c("g:b:1"), artifact.ScopeTest),
		),
		artifact.NewNode(c("g:a:1"),
			artifact.NewDependency(c("g:c:1"), ""),
			artifact.NewDependency(c("g:d:1"), "").AsOptional(),
		),
		artifact.NewNode(c("g:b:1"), artifact.NewDependency(c("g:c:2"), "")),
		artifact.NewNode(c("g:c:1")),
	)
	res, err := collect.New(repo, collect.Options{}).Collect(context.Background(), c("g:app:1"))
	require.NoError(t, err)
	return res
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, collectSample(t), FormatText))
	require.Equal(t, "g:a:1 (compile)\ng:b:1 (test)\ng:c:1 (compile)\n", buf.String())
}

func TestWriteReportTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, collectSample(t), FormatTree))
	want := strings.Join([]string{
		"g:app:1",
		"+- g:a:1:compile",
		"|  \\- g:c:1:compile",
		"\\- g:b:1:test",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, collectSample(t), FormatJSON))

	var r Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
	require.Equal(t, "g:app:1", r.Root)
	require.Len(t, r.Dependencies, 3)
	require.Equal(t, Dependency{Coordinate: "g:c:1", Scope: "compile", Depth: 2}, r.Dependencies[2])
	require.Len(t, r.Conflicts, 1)
	require.Equal(t, "g:c:2", r.Conflicts[0].Loser)
	require.Equal(t, "downgrade", r.Conflicts[0].Kind)
	require.Equal(t, []string{"g:app:1", "g:b:1"}, r.Conflicts[0].Path)
}

func TestWriteReportUnknownFormat(t *testing.T) {
	err := WriteReport(&bytes.Buffer{}, collectSample(t), "yaml")
	require.ErrorContains(t, err, `unknown format "yaml"`)
}

func TestJSONRoundTrip(t *testing.T) {
	g := collectSample(t).Graph

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(g, &buf))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	require.Equal(t, g.NodeCount(), got.NodeCount())
	require.Equal(t, g.EdgeCount(), got.EdgeCount())
	require.Equal(t, "g:app:1", got.Meta()["root"])

	n, ok := got.Node("g:c:1")
	require.True(t, ok)
	require.Equal(t, 2, n.Row)
	require.Equal(t, "compile", n.Meta["scope"])
	require.Equal(t, "1", n.Meta["version"])
	require.Equal(t, []string{"g:a:1"}, got.Parents("g:c:1"))
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.json")
	require.NoError(t, ExportJSON(collectSample(t).Graph, path))

	g, err := ImportJSON(path)
	require.NoError(t, err)
	require.Equal(t, 4, g.NodeCount())

	_, err = ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate node", `{"root":"a","nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, dag.ErrDuplicateNodeID},
		{"unknown target", `{"root":"a","nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`, dag.ErrUnknownTargetNode},
		{"empty id", `{"root":"a","nodes":[{"id":""}],"edges":[]}`, dag.ErrInvalidNodeID},
		{"missing root", `{"root":"x","nodes":[{"id":"a"}],"edges":[]}`, ErrNoRoot},
		{"skipped depth", `{"root":"a","nodes":[{"id":"a"},{"id":"b","depth":2}],"edges":[{"from":"a","to":"b"}]}`, dag.ErrNonConsecutiveRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := ReadJSON(strings.NewReader("{"))
	require.ErrorContains(t, err, "decode")
}

func TestWriteResolved(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResolved(&buf, collectSample(t).Dependencies))

	var got []Dependency
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, []Dependency{
		{Coordinate: "g:a:1", Scope: "compile", Depth: 1},
		{Coordinate: "g:b:1", Scope: "test", Depth: 1},
		{Coordinate: "g:c:1", Scope: "compile", Depth: 2},
	}, got)
}
