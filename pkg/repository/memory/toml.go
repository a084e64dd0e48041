package memory

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// fixture is the TOML layout accepted by [DecodeTOML]:
//
//	[[artifact]]
//	coordinate = "org.acme:app:1"
//	dependencies = [
//	  { coordinate = "org.acme:lib:1" },
//	  { coordinate = "junit:junit:4.13", scope = "test" },
//	  { coordinate = "org.acme:extra:2", optional = true, exclusions = ["org.slf4j:*"] },
//	]
//	managed = [{ coordinate = "org.acme:util:3" }]
type fixture struct {
	Artifacts []fixtureArtifact `toml:"artifact"`
}

type fixtureArtifact struct {
	Coordinate   string       `toml:"coordinate"`
	Dependencies []fixtureDep `toml:"dependencies"`
	Managed      []fixtureDep `toml:"managed"`
}

type fixtureDep struct {
	Coordinate string   `toml:"coordinate"`
	Scope      string   `toml:"scope"`
	Optional   bool     `toml:"optional"`
	Exclusions []string `toml:"exclusions"`
}

// LoadTOML reads a fixture graph from the file at path.
func LoadTOML(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTOML(f)
}

// DecodeTOML reads a fixture graph from r.
func DecodeTOML(r io.Reader) (*Repository, error) {
	var fx fixture
	if _, err := toml.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	nodes := make([]*artifact.Node, 0, len(fx.Artifacts))
	for _, a := range fx.Artifacts {
		coord, err := artifact.ParseCoordinate(a.Coordinate)
		if err != nil {
			return nil, err
		}
		deps, err := convertDeps(a.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Coordinate, err)
		}
		managed, err := convertDeps(a.Managed)
		if err != nil {
			return nil, fmt.Errorf("%s: managed: %w", a.Coordinate, err)
		}
		n := artifact.NewNode(coord, deps...)
		if len(managed) > 0 {
			n = n.WithManaged(managed...)
		}
		nodes = append(nodes, n)
	}
	return New(nodes...), nil
}

func convertDeps(in []fixtureDep) ([]artifact.Dependency, error) {
	out := make([]artifact.Dependency, 0, len(in))
	for _, d := range in {
		coord, err := artifact.ParseCoordinate(d.Coordinate)
		if err != nil {
			return nil, err
		}
		dep := artifact.NewDependency(coord, artifact.Scope(d.Scope))
		if d.Optional {
			dep = dep.AsOptional()
		}
		for _, ex := range d.Exclusions {
			g, a, ok := strings.Cut(ex, ":")
			if !ok {
				return nil, fmt.Errorf("invalid exclusion %q (expected groupId:artifactId)", ex)
			}
			dep = dep.WithExclusions(artifact.Exclusion{GroupID: g, ArtifactID: a})
		}
		out = append(out, dep)
	}
	return out, nil
}
