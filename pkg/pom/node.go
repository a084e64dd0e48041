package pom

import (
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// Skipped is a dependency left out of a node because its coordinate could
// not be completed.
type Skipped struct {
	Dependency Dependency
	Reason     string
}

// Node converts p into an artifact node carrying p's own coordinate.
// Call it on an effective model; see [Project.NodeFor].
func (p *Project) Node() (*artifact.Node, []Skipped) {
	return p.NodeFor(p.Coordinate())
}

// NodeFor converts p into an artifact node for c. Repositories use it
// because one POM describes every classifier and type of a version.
//
// Dependencies with an unresolved property reference or no version are
// returned in skipped instead of being added to the node.
func (p *Project) NodeFor(c artifact.Coordinate) (*artifact.Node, []Skipped) {
	var (
		deps    []artifact.Dependency
		skipped []Skipped
	)
	for _, d := range p.Dependencies {
		if reason := incomplete(d); reason != "" {
			skipped = append(skipped, Skipped{Dependency: d, Reason: reason})
			continue
		}
		deps = append(deps, toArtifact(d))
	}

	var managed []artifact.Dependency
	for _, m := range p.Management {
		if isImport(m) || incomplete(m) != "" {
			continue
		}
		managed = append(managed, toArtifact(m))
	}
	return artifact.NewNode(c, deps...).WithManaged(managed...), skipped
}

func incomplete(d Dependency) string {
	switch {
	case d.GroupID == "" || d.ArtifactID == "":
		return "missing groupId or artifactId"
	case hasRef(d.GroupID) || hasRef(d.ArtifactID) || hasRef(d.Version) || hasRef(d.Classifier) || hasRef(d.Type):
		return "unresolved property reference"
	case d.Version == "":
		return "no version declared or managed"
	}
	return ""
}

func hasRef(s string) bool { return strings.Contains(s, "${") }

func toArtifact(d Dependency) artifact.Dependency {
	dep := artifact.NewDependency(d.Coordinate(), artifact.Scope(d.Scope))
	dep.Optional = d.Optional
	if len(d.Exclusions) > 0 {
		dep = dep.WithExclusions(d.Exclusions...)
	}
	return dep
}
