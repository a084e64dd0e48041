package artifact

import (
	"encoding/json"
	"slices"
)

// Exclusion removes matching artifacts from the subtree of the dependency
// that declares it. Either field may be "*" to match any value.
type Exclusion struct {
	GroupID    string `json:"groupId" toml:"group"`
	ArtifactID string `json:"artifactId" toml:"artifact"`
}

// Matches reports whether the exclusion applies to k.
func (e Exclusion) Matches(k Key) bool {
	return (e.GroupID == "*" || e.GroupID == k.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == k.ArtifactID)
}

// Dependency is a declared edge from an artifact to a child coordinate.
type Dependency struct {
	Coordinate Coordinate  `json:"coordinate"`
	Scope      Scope       `json:"scope,omitempty"`
	Optional   bool        `json:"optional,omitempty"`
	Exclusions []Exclusion `json:"exclusions,omitempty"`
}

// NewDependency returns a dependency on c with the given scope.
// An empty scope means compile.
func NewDependency(c Coordinate, scope Scope) Dependency {
	return Dependency{Coordinate: c, Scope: scope.Normalize()}
}

// AsOptional returns a copy of d marked optional.
func (d Dependency) AsOptional() Dependency {
	d.Optional = true
	return d
}

// WithExclusions returns a copy of d with ex appended to its exclusions.
func (d Dependency) WithExclusions(ex ...Exclusion) Dependency {
	d.Exclusions = append(slices.Clone(d.Exclusions), ex...)
	return d
}

// EffectiveScope returns the declared scope, defaulting to compile.
func (d Dependency) EffectiveScope() Scope { return d.Scope.Normalize() }

// Node is the description of one artifact as returned by a repository: its
// coordinate, its declared dependencies in order, and the managed versions it
// imposes on its own subtree.
//
// A Node is immutable after construction.
type Node struct {
	coord   Coordinate
	deps    []Dependency
	managed []Dependency
}

// NewNode builds a node for c with the given dependencies.
// The dependency slice is copied; later changes by the caller do not leak in.
func NewNode(c Coordinate, deps ...Dependency) *Node {
	return &Node{coord: c, deps: cloneDeps(deps)}
}

// WithManaged returns a copy of n carrying the given dependencyManagement
// entries.
func (n *Node) WithManaged(managed ...Dependency) *Node {
	return &Node{coord: n.coord, deps: cloneDeps(n.deps), managed: cloneDeps(managed)}
}

// Coordinate returns the node's coordinate.
func (n *Node) Coordinate() Coordinate { return n.coord }

// Dependencies returns a copy of the declared dependencies in declaration order.
func (n *Node) Dependencies() []Dependency { return cloneDeps(n.deps) }

// Managed returns a copy of the dependencyManagement entries.
func (n *Node) Managed() []Dependency { return cloneDeps(n.managed) }

func cloneDeps(deps []Dependency) []Dependency {
	if len(deps) == 0 {
		return nil
	}
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		d.Exclusions = slices.Clone(d.Exclusions)
		out[i] = d
	}
	return out
}

type nodeJSON struct {
	Coordinate   Coordinate   `json:"coordinate"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Managed      []Dependency `json:"managed,omitempty"`
}

// MarshalJSON encodes the node so it can be stored in a cache.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{Coordinate: n.coord, Dependencies: n.deps, Managed: n.managed})
}

// UnmarshalJSON decodes a node previously written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var v nodeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Node{coord: v.Coordinate, deps: v.Dependencies, managed: v.Managed}
	return nil
}

// Resolved is one entry of a collected dependency list.
type Resolved struct {
	Coordinate Coordinate `json:"coordinate"`
	Scope      Scope      `json:"scope"`
	Depth      int        `json:"depth"`
	Optional   bool       `json:"optional,omitempty"`
}

// String renders r as "coordinate (scope)".
func (r Resolved) String() string {
	s := r.Coordinate.String() + " (" + r.Scope.String()
	if r.Optional {
		s += ", optional"
	}
	return s + ")"
}
