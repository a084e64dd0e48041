package pom

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

const (
	maxInheritance = 32 // parent and import chain length
	maxExpansion   = 16 // nested ${...} resolution depth
)

// Loader fetches the raw POM of a coordinate. It is used to read parent
// POMs and imported BOMs while building an effective model.
type Loader interface {
	LoadProject(ctx context.Context, c artifact.Coordinate) (*Project, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, c artifact.Coordinate) (*Project, error)

// LoadProject calls f(ctx, c).
func (f LoaderFunc) LoadProject(ctx context.Context, c artifact.Coordinate) (*Project, error) {
	return f(ctx, c)
}

// Effective returns the effective model of p: parents merged in, properties
// interpolated, import-scoped BOMs expanded, and dependencyManagement applied
// to the declared dependencies. p itself is not modified.
//
// With a nil loader only the <parent> element's groupId and version are
// inherited and imported BOMs are dropped.
func (p *Project) Effective(ctx context.Context, load Loader) (*Project, error) {
	return p.effective(ctx, load, map[string]bool{})
}

func (p *Project) effective(ctx context.Context, load Loader, seen map[string]bool) (*Project, error) {
	eff, err := p.inherited(ctx, load, seen)
	if err != nil {
		return nil, err
	}
	eff.interpolate()
	if err := eff.importBOMs(ctx, load, seen); err != nil {
		return nil, err
	}
	eff.applyManagement()
	return eff, nil
}

// inherited merges the parent chain into a copy of p without interpolating,
// so child properties apply to inherited elements.
func (p *Project) inherited(ctx context.Context, load Loader, seen map[string]bool) (*Project, error) {
	eff := p.clone()
	if p.Parent == nil {
		return eff, nil
	}
	if eff.GroupID == "" {
		eff.GroupID = p.Parent.GroupID
	}
	if eff.Version == "" {
		eff.Version = p.Parent.Version
	}
	if load == nil {
		return eff, nil
	}

	pc := p.Parent.Coordinate()
	id := pc.String()
	if seen[id] || len(seen) >= maxInheritance {
		return nil, fmt.Errorf("parent cycle at %s", id)
	}
	seen[id] = true
	defer delete(seen, id)

	raw, err := load.LoadProject(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("load parent %s: %w", id, err)
	}
	parent, err := raw.inherited(ctx, load, seen)
	if err != nil {
		return nil, err
	}
	eff.inherit(parent)
	return eff, nil
}

func (p *Project) inherit(parent *Project) {
	props := maps.Clone(parent.Properties)
	maps.Copy(props, p.Properties)
	p.Properties = props
	p.Management = mergeDeps(p.Management, parent.Management)
	p.Dependencies = mergeDeps(p.Dependencies, parent.Dependencies)
}

// mergeDeps returns own followed by every inherited entry whose key own does
// not redeclare.
func mergeDeps(own, inherited []Dependency) []Dependency {
	out := slices.Clone(own)
	have := make(map[artifact.Key]bool, len(own))
	for _, d := range own {
		have[d.Key()] = true
	}
	for _, d := range inherited {
		if !have[d.Key()] {
			out = append(out, d)
		}
	}
	return out
}

func (p *Project) importBOMs(ctx context.Context, load Loader, seen map[string]bool) error {
	var out []Dependency
	have := make(map[artifact.Key]bool)
	for _, m := range p.Management {
		if !isImport(m) {
			have[m.Key()] = true
		}
	}
	for _, m := range p.Management {
		if !isImport(m) {
			out = append(out, m)
			continue
		}
		if load == nil {
			continue
		}
		bc := artifact.NewCoordinate(m.GroupID, m.ArtifactID, m.Version).WithType("pom")
		id := bc.String()
		if seen[id] || len(seen) >= maxInheritance {
			return fmt.Errorf("import cycle at %s", id)
		}
		seen[id] = true
		raw, err := load.LoadProject(ctx, bc)
		if err != nil {
			delete(seen, id)
			return fmt.Errorf("import bom %s: %w", id, err)
		}
		bom, err := raw.effective(ctx, load, seen)
		delete(seen, id)
		if err != nil {
			return err
		}
		for _, bm := range bom.Management {
			if !have[bm.Key()] {
				have[bm.Key()] = true
				out = append(out, bm)
			}
		}
	}
	p.Management = out
	return nil
}

func isImport(d Dependency) bool { return d.Scope == "import" && d.Type == "pom" }

func (p *Project) applyManagement() {
	idx := make(map[artifact.Key]Dependency, len(p.Management))
	for _, m := range p.Management {
		idx[m.Key()] = m
	}
	for i, d := range p.Dependencies {
		m, ok := idx[d.Key()]
		if !ok {
			continue
		}
		if d.Version == "" {
			d.Version = m.Version
		}
		if d.Scope == "" {
			d.Scope = m.Scope
		}
		for _, ex := range m.Exclusions {
			if !slices.Contains(d.Exclusions, ex) {
				d.Exclusions = append(d.Exclusions, ex)
			}
		}
		p.Dependencies[i] = d
	}
}

// interpolate expands ${...} references in coordinates and dependencies.
func (p *Project) interpolate() {
	p.GroupID = p.expand(p.GroupID, 0)
	p.ArtifactID = p.expand(p.ArtifactID, 0)
	p.Version = p.expand(p.Version, 0)
	p.Packaging = p.expand(p.Packaging, 0)
	for _, deps := range [][]Dependency{p.Dependencies, p.Management} {
		for i := range deps {
			d := &deps[i]
			d.GroupID = p.expand(d.GroupID, 0)
			d.ArtifactID = p.expand(d.ArtifactID, 0)
			d.Version = p.expand(d.Version, 0)
			d.Type = p.expand(d.Type, 0)
			d.Classifier = p.expand(d.Classifier, 0)
			d.Scope = p.expand(d.Scope, 0)
			for j := range d.Exclusions {
				d.Exclusions[j].GroupID = p.expand(d.Exclusions[j].GroupID, 0)
				d.Exclusions[j].ArtifactID = p.expand(d.Exclusions[j].ArtifactID, 0)
			}
		}
	}
}

// expand replaces every resolvable ${name} in s. Unknown references are
// kept verbatim.
func (p *Project) expand(s string, depth int) string {
	if depth >= maxExpansion || !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start
		b.WriteString(s[:start])
		name := s[start+2 : end]
		if v, ok := p.property(name); ok {
			b.WriteString(p.expand(v, depth+1))
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}

func (p *Project) property(name string) (string, bool) {
	switch name {
	case "project.groupId", "pom.groupId", "groupId":
		return p.GroupID, p.GroupID != ""
	case "project.artifactId", "pom.artifactId", "artifactId":
		return p.ArtifactID, p.ArtifactID != ""
	case "project.version", "pom.version", "version":
		return p.Version, p.Version != ""
	case "project.packaging":
		if p.Packaging == "" {
			return artifact.DefaultType, true
		}
		return p.Packaging, true
	case "project.parent.groupId", "parent.groupId":
		if p.Parent != nil {
			return p.Parent.GroupID, p.Parent.GroupID != ""
		}
		return "", false
	case "project.parent.version", "parent.version":
		v := p.parentVersion()
		return v, v != ""
	}
	v, ok := p.Properties[name]
	return v, ok
}

func (p *Project) parentVersion() string {
	if p.Parent == nil {
		return ""
	}
	return p.Parent.Version
}

func (p *Project) clone() *Project {
	cp := *p
	cp.Properties = maps.Clone(p.Properties)
	if cp.Properties == nil {
		cp.Properties = map[string]string{}
	}
	cp.Dependencies = cloneDeps(p.Dependencies)
	cp.Management = cloneDeps(p.Management)
	if p.Parent != nil {
		par := *p.Parent
		cp.Parent = &par
	}
	return &cp
}

func cloneDeps(in []Dependency) []Dependency {
	if in == nil {
		return nil
	}
	out := make([]Dependency, len(in))
	for i, d := range in {
		d.Exclusions = slices.Clone(d.Exclusions)
		out[i] = d
	}
	return out
}
