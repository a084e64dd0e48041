package collect

import (
	"errors"
	"strings"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// ErrNotFound is wrapped by repositories when a coordinate cannot be located.
var ErrNotFound = errors.New("artifact not found")

// ResolutionError aborts a collection when a visited coordinate could not be
// resolved. Path lists the coordinates from the root down to the artifact that
// declared the failing dependency; it is empty when the root itself failed.
type ResolutionError struct {
	Coordinate artifact.Coordinate
	Path       []artifact.Coordinate
	Err        error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("resolve ")
	b.WriteString(e.Coordinate.String())
	if len(e.Path) > 0 {
		b.WriteString(" (via ")
		for i, c := range e.Path {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(c.String())
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// IsNotFound reports whether err was caused by a missing artifact.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
