package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/repository/memory"
)

func sample(t *testing.T) *collect.Result {
	t.Helper()
	c := artifact.MustParseCoordinate
	repo := memory.New(
		artifact.NewNode(c("g:app:1"),
			artifact.NewDependency(c("g:a:1"), ""),
			artifact.NewDependency(c("g:b:1"), artifact.ScopeTest),
			artifact.NewDependency(c("g:opt:1"), "").AsOptional(),
		),
		artifact.NewNode(c("g:a:1"), artifact.NewDependency(c("g:b:2"), "")),
		artifact.NewNode(c("g:b:1")),
		artifact.NewNode(c("g:opt:1")),
	)
	res, err := collect.New(repo, collect.Options{}).Collect(context.Background(), c("g:app:1"))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return res
}

func TestToDOT(t *testing.T) {
	res := sample(t)

	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "plain",
			want: []string{
				`"g:app:1" [label="g:app:1", penwidth=2`,
				`"g:b:1" [label="g:b:1", fillcolor=mistyrose]`,
				`"g:opt:1" [label="g:opt:1", fillcolor=white, style="rounded,filled,dashed"]`,
				`"g:app:1" -> "g:a:1";`,
				`{ rank=same; "g:a:1"; "g:b:1"; "g:opt:1" };`,
			},
			notWant: []string{"omitted", "depth:"},
		},
		{
			name: "detailed",
			opts: Options{Detailed: true},
			want: []string{`label="g:a:1\ndepth: 1\nscope: compile\nversion: 1"`},
		},
		{
			name: "edge scopes",
			opts: Options{EdgeScopes: true},
			want: []string{`"g:app:1" -> "g:b:1" [label="test", fontsize=10];`},
		},
		{
			name: "conflicts",
			opts: Options{Conflicts: res.Conflicts},
			want: []string{
				`"g:b:2 (omitted)" [label="g:b:2\nomitted for 1"`,
				`"g:a:1" -> "g:b:2 (omitted)" [style=dashed`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(res.Graph, tt.opts)
			if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
				t.Fatalf("malformed DOT:\n%s", dot)
			}
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q:\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("DOT should not contain %q", w)
				}
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("svg without viewBox should be unchanged, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sample(t).Graph, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("g:app:1")) {
		t.Error("SVG should contain the root label")
	}
}
