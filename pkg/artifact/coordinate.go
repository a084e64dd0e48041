package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultType is the packaging type assumed when a coordinate omits one.
const DefaultType = "jar"

// ErrInvalidCoordinate is returned when a coordinate string cannot be parsed
// or a coordinate is missing a required field.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate identifies a single artifact in a repository.
//
// The zero value is not resolvable. ArtifactID, Version and Type must be set
// for the coordinate to map to a concrete file name; Classifier may be empty.
type Coordinate struct {
	GroupID    string `json:"groupId" toml:"group"`
	ArtifactID string `json:"artifactId" toml:"artifact"`
	Classifier string `json:"classifier,omitempty" toml:"classifier"`
	Type       string `json:"type,omitempty" toml:"type"`
	Version    string `json:"version" toml:"version"`
}

// Key identifies an artifact independently of its version.
// It is the conflict-resolution identity (groupId:artifactId:classifier:type).
type Key struct {
	GroupID    string
	ArtifactID string
	Classifier string
	Type       string
}

// String renders the key as "groupId:artifactId:classifier:type".
func (k Key) String() string {
	return k.GroupID + ":" + k.ArtifactID + ":" + k.Classifier + ":" + k.Type
}

// NewCoordinate returns a coordinate with the default "jar" type.
func NewCoordinate(groupID, artifactID, version string) Coordinate {
	return Coordinate{GroupID: groupID, ArtifactID: artifactID, Type: DefaultType, Version: version}
}

// WithClassifier returns a copy of c with the classifier replaced.
func (c Coordinate) WithClassifier(classifier string) Coordinate {
	c.Classifier = classifier
	return c
}

// WithType returns a copy of c with the type replaced.
func (c Coordinate) WithType(typ string) Coordinate {
	c.Type = typ
	return c
}

// WithVersion returns a copy of c with the version replaced.
func (c Coordinate) WithVersion(version string) Coordinate {
	c.Version = version
	return c
}

// Key returns the version-less identity of c.
// An empty type is treated as [DefaultType] so that "g:a:1" and a coordinate
// built by hand without a type land on the same key.
func (c Coordinate) Key() Key {
	typ := c.Type
	if typ == "" {
		typ = DefaultType
	}
	return Key{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Classifier: c.Classifier, Type: typ}
}

// Validate reports whether c has the fields required to resolve to a file.
func (c Coordinate) Validate() error {
	switch {
	case c.ArtifactID == "":
		return fmt.Errorf("%w: missing artifactId in %q", ErrInvalidCoordinate, c.String())
	case c.Version == "":
		return fmt.Errorf("%w: missing version in %q", ErrInvalidCoordinate, c.String())
	case c.Type == "":
		return fmt.Errorf("%w: missing type in %q", ErrInvalidCoordinate, c.String())
	}
	return nil
}

// FileName returns the repository file name for c:
// artifactId-version[-classifier].type
func (c Coordinate) FileName() string {
	var b strings.Builder
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	b.WriteByte('.')
	b.WriteString(c.Type)
	return b.String()
}

// String renders c in the "groupId:artifactId[:type[:classifier]]:version"
// form. The type is omitted when it is the default and no classifier is set.
func (c Coordinate) String() string {
	parts := []string{c.GroupID, c.ArtifactID}
	switch {
	case c.Classifier != "":
		parts = append(parts, c.typeOrDefault(), c.Classifier)
	case c.Type != "" && c.Type != DefaultType:
		parts = append(parts, c.Type)
	}
	parts = append(parts, c.Version)
	return strings.Join(parts, ":")
}

func (c Coordinate) typeOrDefault() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}

// ParseCoordinate parses a coordinate in one of the forms
//
//	groupId:artifactId:version
//	groupId:artifactId:type:version
//	groupId:artifactId:type:classifier:version
//
// Surrounding whitespace is ignored. Every segment must be non-empty.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidCoordinate, s)
		}
	}

	c := Coordinate{Type: DefaultType}
	switch len(parts) {
	case 3:
		c.GroupID, c.ArtifactID, c.Version = parts[0], parts[1], parts[2]
	case 4:
		c.GroupID, c.ArtifactID, c.Type, c.Version = parts[0], parts[1], parts[2], parts[3]
	case 5:
		c.GroupID, c.ArtifactID, c.Type, c.Classifier, c.Version = parts[0], parts[1], parts[2], parts[3], parts[4]
	default:
		return Coordinate{}, fmt.Errorf("%w: %q (expected groupId:artifactId[:type[:classifier]]:version)", ErrInvalidCoordinate, s)
	}
	return c, nil
}

// MustParseCoordinate is like [ParseCoordinate] but panics on error.
// It is intended for tests and static tables.
func MustParseCoordinate(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}
