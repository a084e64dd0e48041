package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// coordinatePartRegex matches a single groupId, artifactId, type,
// classifier or version segment.
var coordinatePartRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+\-]*$`)

const maxCoordinateLength = 512

// ValidateCoordinate parses s and rejects coordinates that are malformed or
// unsafe to turn into repository paths or cache keys.
//
// The rules are intentionally stricter than Maven's:
//   - Maximum length of 512 characters
//   - No control characters
//   - Segments limited to letters, digits and "_.+-"
//   - No ".." anywhere
func ValidateCoordinate(s string) (artifact.Coordinate, error) {
	if s == "" {
		return artifact.Coordinate{}, New(ErrCodeInvalidCoordinate, "coordinate cannot be empty")
	}
	if len(s) > maxCoordinateLength {
		return artifact.Coordinate{}, New(ErrCodeInvalidCoordinate, "coordinate too long (max %d characters)", maxCoordinateLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return artifact.Coordinate{}, New(ErrCodeInvalidCoordinate, "coordinate contains invalid control characters")
		}
	}
	if strings.Contains(s, "..") {
		return artifact.Coordinate{}, New(ErrCodeInvalidCoordinate, "coordinate cannot contain %q", "..")
	}

	c, err := artifact.ParseCoordinate(s)
	if err != nil {
		return artifact.Coordinate{}, Wrap(ErrCodeInvalidCoordinate, err, "cannot parse %q", s)
	}
	for _, part := range []string{c.GroupID, c.ArtifactID, c.Type, c.Classifier, c.Version} {
		if part != "" && !coordinatePartRegex.MatchString(part) {
			return artifact.Coordinate{}, New(ErrCodeInvalidCoordinate, "invalid coordinate segment %q in %q", part, s)
		}
	}
	return c, nil
}

// ValidateScope rejects names that are not Maven dependency scopes.
func ValidateScope(name string) (artifact.Scope, error) {
	switch s := artifact.Scope(name); s {
	case artifact.ScopeCompile, artifact.ScopeProvided, artifact.ScopeRuntime,
		artifact.ScopeTest, artifact.ScopeSystem:
		return s, nil
	}
	return "", New(ErrCodeInvalidInput, "unknown scope %q", name)
}

// ValidatePOMFilename checks that path names an XML file.
func ValidatePOMFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "pom path cannot be empty")
	}
	base := filepath.Base(path)
	if base != "pom.xml" && !strings.HasSuffix(base, ".pom") && !strings.HasSuffix(base, ".xml") {
		return New(ErrCodeInvalidPath, "%q is not a pom file (expected pom.xml, *.pom or *.xml)", base)
	}
	return nil
}

// ValidatePath validates a repository-relative path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a repository URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "repository URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "repository URL must use http or https scheme: %q", rawURL)
	}

	return nil
}
