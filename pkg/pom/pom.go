package pom

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// Project is a parsed POM.
type Project struct {
	GroupID     string
	ArtifactID  string
	Version     string
	Packaging   string
	Name        string
	Description string
	Parent      *Parent
	Properties  map[string]string

	Dependencies []Dependency // <dependencies>, in declaration order
	Management   []Dependency // <dependencyManagement><dependencies>
}

// Parent is the <parent> reference of a POM.
type Parent struct {
	GroupID      string
	ArtifactID   string
	Version      string
	RelativePath string
}

// Coordinate returns the parent POM's coordinate.
func (p Parent) Coordinate() artifact.Coordinate {
	return artifact.NewCoordinate(p.GroupID, p.ArtifactID, p.Version).WithType("pom")
}

// Dependency is a <dependency> element. Empty fields were not declared.
type Dependency struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Classifier string
	Scope      string
	Optional   bool
	Exclusions []artifact.Exclusion
}

// Key returns the management key of d.
func (d Dependency) Key() artifact.Key {
	return artifact.Coordinate{GroupID: d.GroupID, ArtifactID: d.ArtifactID, Classifier: d.Classifier, Type: d.Type}.Key()
}

// Coordinate returns the coordinate d points at.
func (d Dependency) Coordinate() artifact.Coordinate {
	typ := d.Type
	if typ == "" {
		typ = artifact.DefaultType
	}
	return artifact.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Classifier: d.Classifier,
		Type:       typ,
		Version:    d.Version,
	}
}

// Coordinate returns the project's own coordinate. The type is the
// packaging, except that the "bundle" and empty packagings map to jar.
func (p *Project) Coordinate() artifact.Coordinate {
	typ := p.Packaging
	if typ == "" || typ == "bundle" {
		typ = artifact.DefaultType
	}
	return artifact.NewCoordinate(p.GroupID, p.ArtifactID, p.Version).WithType(typ)
}

// Parse decodes a POM document.
func Parse(r io.Reader) (*Project, error) {
	var x pomProject
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}
	return x.project(), nil
}

// ParseBytes decodes a POM document held in memory.
func ParseBytes(data []byte) (*Project, error) {
	var x pomProject
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}
	return x.project(), nil
}

// ParseFile decodes the POM at path.
func ParseFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Name         string          `xml:"name"`
	Description  string          `xml:"description"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Management   []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
}

type pomParent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Type       string         `xml:"type"`
	Classifier string         `xml:"classifier"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// pomProperties decodes <properties> whose children are arbitrary elements.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

func (x *pomProject) project() *Project {
	p := &Project{
		GroupID:      strings.TrimSpace(x.GroupID),
		ArtifactID:   strings.TrimSpace(x.ArtifactID),
		Version:      strings.TrimSpace(x.Version),
		Packaging:    strings.TrimSpace(x.Packaging),
		Name:         strings.TrimSpace(x.Name),
		Description:  strings.TrimSpace(x.Description),
		Properties:   map[string]string(x.Properties),
		Dependencies: convertDeps(x.Dependencies),
		Management:   convertDeps(x.Management),
	}
	if p.Properties == nil {
		p.Properties = map[string]string{}
	}
	if x.Parent != nil {
		p.Parent = &Parent{
			GroupID:      strings.TrimSpace(x.Parent.GroupID),
			ArtifactID:   strings.TrimSpace(x.Parent.ArtifactID),
			Version:      strings.TrimSpace(x.Parent.Version),
			RelativePath: strings.TrimSpace(x.Parent.RelativePath),
		}
	}
	return p
}

func convertDeps(in []pomDependency) []Dependency {
	if len(in) == 0 {
		return nil
	}
	out := make([]Dependency, len(in))
	for i, d := range in {
		out[i] = Dependency{
			GroupID:    strings.TrimSpace(d.GroupID),
			ArtifactID: strings.TrimSpace(d.ArtifactID),
			Version:    strings.TrimSpace(d.Version),
			Type:       strings.TrimSpace(d.Type),
			Classifier: strings.TrimSpace(d.Classifier),
			Scope:      strings.TrimSpace(d.Scope),
			Optional:   strings.TrimSpace(d.Optional) == "true",
		}
		for _, ex := range d.Exclusions {
			out[i].Exclusions = append(out[i].Exclusions, artifact.Exclusion{
				GroupID:    strings.TrimSpace(ex.GroupID),
				ArtifactID: strings.TrimSpace(ex.ArtifactID),
			})
		}
	}
	return out
}
