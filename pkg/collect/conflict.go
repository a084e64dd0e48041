package collect

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/depcollect/pkg/artifact"
)

// ConflictKind classifies how the winning version relates to the version
// that lost.
type ConflictKind int

const (
	// ConflictUpgrade means the nearer version is newer than the omitted one.
	ConflictUpgrade ConflictKind = iota
	// ConflictDowngrade means the nearer version is older than the omitted
	// one, so some artifact on Path runs against an older dependency than it
	// declared.
	ConflictDowngrade
)

func (k ConflictKind) String() string {
	if k == ConflictDowngrade {
		return "downgrade"
	}
	return "upgrade"
}

// Conflict records a dependency that was omitted because the same key had
// already been recorded with a different version.
type Conflict struct {
	Key         artifact.Key
	Winner      artifact.Coordinate
	WinnerDepth int
	Loser       artifact.Coordinate
	LoserDepth  int
	Path        []artifact.Coordinate // root to the artifact that declared Loser
	Kind        ConflictKind
}

func newConflict(winner *entry, loser *entry) Conflict {
	kind := ConflictUpgrade
	if compareVersions(winner.coord.Version, loser.coord.Version) < 0 {
		kind = ConflictDowngrade
	}
	return Conflict{
		Key:         loser.coord.Key(),
		Winner:      winner.coord,
		WinnerDepth: winner.depth,
		Loser:       loser.coord,
		LoserDepth:  loser.depth,
		Path:        loser.path(),
		Kind:        kind,
	}
}

// compareVersions orders two version strings. Versions that parse as
// (lenient) semantic versions are compared numerically, anything else falls
// back to a lexical comparison.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}
