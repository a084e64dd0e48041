package pom

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

const appPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
  </parent>
  <artifactId>my-app</artifactId>
  <packaging>jar</packaging>

  <properties>
    <guava.version>31.0-jre</guava.version>
    <lib.version>${project.version}</lib.version>
  </properties>

  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>2.0.9</version>
        <scope>runtime</scope>
      </dependency>
      <dependency>
        <groupId>com.example</groupId>
        <artifactId>bom</artifactId>
        <version>1.0</version>
        <type>pom</type>
        <scope>import</scope>
      </dependency>
    </dependencies>
  </dependencyManagement>

  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
      <exclusions>
        <exclusion>
          <groupId>com.google.code.findbugs</groupId>
          <artifactId>*</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
    </dependency>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>lib</artifactId>
      <version>${lib.version}</version>
      <classifier>client</classifier>
      <type>test-jar</type>
      <optional>true</optional>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13</version>
      <scope>test</scope>
    </dependency>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>unknown</artifactId>
      <version>${not.defined}</version>
    </dependency>
    <dependency>
      <groupId>com.fasterxml.jackson.core</groupId>
      <artifactId>jackson-databind</artifactId>
    </dependency>
  </dependencies>
</project>`

const parentPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>2.0</version>
  <packaging>pom</packaging>
  <properties>
    <guava.version>30.0-jre</guava.version>
    <commons.version>3.14.0</commons.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.apache.commons</groupId>
      <artifactId>commons-lang3</artifactId>
      <version>${commons.version}</version>
    </dependency>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>1.0</version>
    </dependency>
  </dependencies>
</project>`

const bomPOM = `<project>
  <groupId>com.example</groupId>
  <artifactId>bom</artifactId>
  <version>1.0</version>
  <packaging>pom</packaging>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.fasterxml.jackson.core</groupId>
        <artifactId>jackson-databind</artifactId>
        <version>2.17.0</version>
      </dependency>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>1.7.36</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

func mapLoader(t *testing.T, poms map[string]string) Loader {
	t.Helper()
	return LoaderFunc(func(_ context.Context, c artifact.Coordinate) (*Project, error) {
		src, ok := poms[c.GroupID+":"+c.ArtifactID+":"+c.Version]
		if !ok {
			return nil, fmt.Errorf("no pom for %s", c)
		}
		return Parse(strings.NewReader(src))
	})
}

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(appPOM))
	require.NoError(t, err)

	require.Equal(t, "", p.GroupID)
	require.Equal(t, "my-app", p.ArtifactID)
	require.Equal(t, &Parent{GroupID: "com.example", ArtifactID: "parent", Version: "2.0"}, p.Parent)
	require.Equal(t, "31.0-jre", p.Properties["guava.version"])
	require.Len(t, p.Dependencies, 6)
	require.Len(t, p.Management, 2)

	lib := p.Dependencies[2]
	require.Equal(t, "client", lib.Classifier)
	require.Equal(t, "test-jar", lib.Type)
	require.True(t, lib.Optional)
	require.Equal(t, []artifact.Exclusion{{GroupID: "com.google.code.findbugs", ArtifactID: "*"}}, p.Dependencies[0].Exclusions)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("<project><artifactId>x</artifactId>"))
	require.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pom.xml")
	require.NoError(t, os.WriteFile(path, []byte(parentPOM), 0o644))

	p, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, artifact.NewCoordinate("com.example", "parent", "2.0").WithType("pom"), p.Coordinate())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
}

func TestEffective(t *testing.T) {
	p, err := Parse(strings.NewReader(appPOM))
	require.NoError(t, err)

	load := mapLoader(t, map[string]string{
		"com.example:parent:2.0": parentPOM,
		"com.example:bom:1.0":    bomPOM,
	})
	eff, err := p.Effective(context.Background(), load)
	require.NoError(t, err)

	require.Equal(t, "com.example", eff.GroupID)
	require.Equal(t, "2.0", eff.Version)

	byName := make(map[string]Dependency)
	for _, d := range eff.Dependencies {
		byName[d.ArtifactID] = d
	}

	// child property wins over the parent's
	require.Equal(t, "31.0-jre", byName["guava"].Version)
	// ${lib.version} -> ${project.version} -> inherited version
	require.Equal(t, "2.0", byName["lib"].Version)
	// local management beats the imported BOM, scope comes from management
	require.Equal(t, "2.0.9", byName["slf4j-api"].Version)
	require.Equal(t, "runtime", byName["slf4j-api"].Scope)
	// version supplied by the imported BOM
	require.Equal(t, "2.17.0", byName["jackson-databind"].Version)
	// inherited dependency interpolated with the merged properties
	require.Equal(t, "3.14.0", byName["commons-lang3"].Version)
	require.Equal(t, "${not.defined}", byName["unknown"].Version)

	// the child's guava declaration shadows the parent's
	count := 0
	for _, d := range eff.Dependencies {
		if d.ArtifactID == "guava" {
			count++
		}
	}
	require.Equal(t, 1, count)

	// the original project is untouched
	require.Equal(t, "", p.GroupID)
	require.Equal(t, "${guava.version}", p.Dependencies[0].Version)
}

func TestEffectiveWithoutLoader(t *testing.T) {
	p, err := Parse(strings.NewReader(appPOM))
	require.NoError(t, err)

	eff, err := p.Effective(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "com.example", eff.GroupID)
	require.Equal(t, "2.0", eff.Version)
	require.Len(t, eff.Management, 1, "import entries are dropped without a loader")
}

func TestEffectiveParentCycle(t *testing.T) {
	a := `<project><parent><groupId>g</groupId><artifactId>b</artifactId><version>1</version></parent><artifactId>a</artifactId></project>`
	b := `<project><parent><groupId>g</groupId><artifactId>a</artifactId><version>1</version></parent><artifactId>b</artifactId></project>`
	load := mapLoader(t, map[string]string{"g:a:1": a, "g:b:1": b})

	p, err := Parse(strings.NewReader(a))
	require.NoError(t, err)
	_, err = p.Effective(context.Background(), load)
	require.ErrorContains(t, err, "cycle")
}

func TestEffectiveMissingParent(t *testing.T) {
	p, err := Parse(strings.NewReader(appPOM))
	require.NoError(t, err)

	_, err = p.Effective(context.Background(), mapLoader(t, nil))
	require.ErrorContains(t, err, "load parent com.example:parent:pom:2.0")
}

func TestExpand(t *testing.T) {
	p := &Project{
		GroupID: "g",
		Version: "1.2",
		Parent:  &Parent{Version: "9"},
		Properties: map[string]string{
			"a":    "${b}",
			"b":    "${c}-x",
			"c":    "deep",
			"loop": "${loop}",
		},
	}
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"${project.version}", "1.2"},
		{"${pom.groupId}.sub", "g.sub"},
		{"${parent.version}", "9"},
		{"${a}", "deep-x"},
		{"v${project.version}-${c}", "v1.2-deep"},
		{"${missing}", "${missing}"},
		{"${unterminated", "${unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, p.expand(tt.in, 0))
		})
	}

	// self-reference terminates
	require.Contains(t, p.expand("${loop}", 0), "${loop}")
}

func TestNode(t *testing.T) {
	p, err := Parse(strings.NewReader(appPOM))
	require.NoError(t, err)
	eff, err := p.Effective(context.Background(), mapLoader(t, map[string]string{
		"com.example:parent:2.0": parentPOM,
		"com.example:bom:1.0":    bomPOM,
	}))
	require.NoError(t, err)

	node, skipped := eff.Node()
	require.Equal(t, artifact.MustParseCoordinate("com.example:my-app:2.0"), node.Coordinate())

	var got []string
	for _, d := range node.Dependencies() {
		got = append(got, d.Coordinate.String()+" "+d.Scope.String())
	}
	require.Equal(t, []string{
		"com.google.guava:guava:31.0-jre compile",
		"org.slf4j:slf4j-api:2.0.9 runtime",
		"com.example:lib:test-jar:client:2.0 compile",
		"junit:junit:4.13 test",
		"com.fasterxml.jackson.core:jackson-databind:2.17.0 compile",
		"org.apache.commons:commons-lang3:3.14.0 compile",
	}, got)
	require.True(t, node.Dependencies()[2].Optional)

	require.Len(t, skipped, 1)
	require.Equal(t, "unknown", skipped[0].Dependency.ArtifactID)
	require.Equal(t, "unresolved property reference", skipped[0].Reason)

	require.Len(t, node.Managed(), 2)
}

func TestNodeFor(t *testing.T) {
	p, err := Parse(strings.NewReader(parentPOM))
	require.NoError(t, err)
	eff, err := p.Effective(context.Background(), nil)
	require.NoError(t, err)

	c := artifact.MustParseCoordinate("com.example:parent:jar:sources:2.0")
	node, _ := eff.NodeFor(c)
	require.Equal(t, c, node.Coordinate())
	require.Len(t, node.Dependencies(), 2)
}
