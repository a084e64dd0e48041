package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/matzehuels/depcollect/pkg/errors"
)

const fixtureTOML = `
[[artifact]]
coordinate = "org.acme:app:1"
dependencies = [
  { coordinate = "org.acme:b:1" },
  { coordinate = "org.acme:c:2" },
  { coordinate = "junit:junit:4.13", scope = "test" },
]

[[artifact]]
coordinate = "org.acme:b:1"
dependencies = [{ coordinate = "org.acme:c:1" }]

[[artifact]]
coordinate = "org.acme:c:2"

[[artifact]]
coordinate = "junit:junit:4.13"
`

// runCLI executes the root command in an isolated directory and returns
// what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolate(t)

	var stdout bytes.Buffer
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

// isolate moves the test into a fresh directory holding fixture.toml, with
// config and cache paths pointing inside it.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DEPCOLLECT_CACHE_DIR", filepath.Join(dir, "cache"))
	require.NoError(t, os.WriteFile("fixture.toml", []byte(fixtureTOML), 0o644))

	uiOut = io.Discard
	t.Cleanup(func() { uiOut = os.Stderr })
}

func TestCollectCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "text",
			args: []string{"collect", "--fixture", "fixture.toml", "org.acme:app:1"},
			want: []string{"org.acme:b:1 (compile)", "org.acme:c:2 (compile)", "junit:junit:4.13 (test)"},
		},
		{
			name: "excluded scope",
			args: []string{"collect", "--fixture", "fixture.toml", "--exclude-scope", "test", "org.acme:app:1"},
			want: []string{"org.acme:b:1 (compile)", "org.acme:c:2 (compile)"},
		},
		{
			name: "max depth",
			args: []string{"collect", "--fixture", "fixture.toml", "--max-depth", "1", "org.acme:app:1"},
			want: []string{"org.acme:b:1 (compile)", "org.acme:c:2 (compile)", "junit:junit:4.13 (test)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.Split(strings.TrimSpace(out), "\n"))
		})
	}
}

func TestCollectCommandFormats(t *testing.T) {
	out, err := runCLI(t, "collect", "--fixture", "fixture.toml", "-f", "json", "org.acme:app:1")
	require.NoError(t, err)
	assert.Contains(t, out, `"root": "org.acme:app:1"`)
	assert.Contains(t, out, `"loser": "org.acme:c:1"`)

	out, err = runCLI(t, "collect", "--fixture", "fixture.toml", "-f", "tree", "org.acme:app:1")
	require.NoError(t, err)
	assert.Contains(t, out, "org.acme:app:1\n")
	assert.Contains(t, out, `\- junit:junit:4.13:test`)
}

func TestCollectCommandOutputFile(t *testing.T) {
	out, err := runCLI(t, "collect", "--fixture", "fixture.toml", "-o", "deps.txt", "--graph", "graph.json", "org.acme:app:1")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile("deps.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "org.acme:c:2 (compile)")
	assert.FileExists(t, "graph.json")
}

func TestCollectCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code derrors.Code
	}{
		{"missing root", []string{"collect", "--fixture", "fixture.toml", "org.acme:ghost:1"}, derrors.ErrCodeArtifactNotFound},
		{"bad coordinate", []string{"collect", "--fixture", "fixture.toml", "org..acme:app:1"}, derrors.ErrCodeInvalidCoordinate},
		{"bad scope", []string{"collect", "--fixture", "fixture.toml", "--exclude-scope", "import", "org.acme:app:1"}, derrors.ErrCodeInvalidInput},
		{"bad fixture", []string{"collect", "--fixture", "missing.toml", "org.acme:app:1"}, derrors.ErrCodeInvalidInput},
		{"bad tree format", []string{"tree", "--fixture", "fixture.toml", "-f", "pdf", "org.acme:app:1"}, derrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, derrors.GetCode(err), "err: %v", err)
		})
	}
}

func TestTreeCommandDOT(t *testing.T) {
	out, err := runCLI(t, "tree", "--fixture", "fixture.toml", "-f", "dot", "--conflicts", "org.acme:app:1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"), out)
	assert.Contains(t, out, "org.acme:c:1 (omitted)")
}

func TestTreeCommandFromGraph(t *testing.T) {
	_, err := runCLI(t, "collect", "--fixture", "fixture.toml", "--graph", "graph.json", "-o", "deps.txt", "org.acme:app:1")
	require.NoError(t, err)
	graph, err := os.ReadFile("graph.json")
	require.NoError(t, err)

	// runCLI moves to a fresh directory, so carry the graph over.
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(path, graph, 0o644))

	out, err := runCLI(t, "tree", "--from", path, "-f", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "org.acme:b:1")

	_, err = runCLI(t, "tree", "--from", path, "org.acme:app:1")
	assert.Error(t, err, "--from takes no coordinate")
}

func TestCachePathCommand(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, "cache", filepath.Base(strings.TrimSpace(out)))

	_, err = runCLI(t, "cache", "path", "--cache-backend", "none")
	assert.Error(t, err)
}

func TestCacheClearCommand(t *testing.T) {
	_, err := runCLI(t, "cache", "clear")
	require.NoError(t, err)
	assert.DirExists(t, "cache")
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "depcollect")
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		wantErr string
		wantLog string
	}{
		{name: "success", args: []string{"cache", "path"}},
		{name: "verbose", args: []string{"-v", "cache", "path"}, wantLog: "config loaded"},
		{name: "json logs", args: []string{"-v", "--log-format", "json", "cache", "path"}, wantLog: `"msg":"config loaded"`},
		{name: "bad log format", args: []string{"--log-format", "xml", "cache", "path"}, code: 2, wantErr: "invalid --log-format"},
		{name: "not found", args: []string{"collect", "--fixture", "fixture.toml", "org.acme:ghost:1"}, code: 3, wantErr: "Error:"},
		{name: "bad coordinate", args: []string{"collect", "--fixture", "fixture.toml", "nope"}, code: 2, wantErr: "Error:"},
		{name: "unknown command", args: []string{"frobnicate"}, code: 1, wantErr: "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			var stderr bytes.Buffer
			code := New(&stderr, log.InfoLevel).Execute(context.Background(), tt.args)
			assert.Equal(t, tt.code, code)
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
			if tt.wantLog != "" {
				assert.Contains(t, stderr.String(), tt.wantLog)
			}
		})
	}
}
