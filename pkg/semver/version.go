// Package semver implements the version algebra used by release planning.
//
// It wraps Masterminds semantic versions into the two projections planning
// cares about (the full version including pre-release and build metadata, and
// the bare version with both stripped), implements the pre-release ladder
// (alpha -> beta -> rc -> release) used to step versions between release
// candidates, and rewrites dependency version requirements against a new
// concrete version.
//
// All operations are pure: a bump produces a new Version and never mutates
// its input.
package semver

import (
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"

	"github.com/matzehuels/towline/pkg/errors"
)

// Version is a semantic version in two projections.
//
// Full carries pre-release and build-metadata identifiers; Bare is Full with
// both cleared. Both string renderings are computed once at construction.
// Version values are immutable after construction.
type Version struct {
	Full *mmsemver.Version
	Bare *mmsemver.Version

	FullString string
	BareString string
}

// New wraps a parsed semantic version into its full/bare projections.
func New(full *mmsemver.Version) *Version {
	bare := stripped(full)
	return &Version{
		Full:       full,
		Bare:       bare,
		FullString: full.String(),
		BareString: bare.String(),
	}
}

// Parse parses a strict three-component semantic version string.
// Returns an INVALID_VERSION error for anything else.
func Parse(raw string) (*Version, error) {
	full, err := mmsemver.StrictNewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", raw)
	}
	return New(full), nil
}

// MustParse is Parse for test fixtures and constants; it panics on error.
func MustParse(raw string) *Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease reports whether the full version carries a pre-release
// identifier.
func (v *Version) IsPrerelease() bool {
	return v.Full.Prerelease() != ""
}

// LessThan reports whether v orders before other by full-version precedence.
func (v *Version) LessThan(other *Version) bool {
	return v.Full.LessThan(other.Full)
}

// Equal reports whether the two full versions are equal.
func (v *Version) Equal(other *Version) bool {
	return v.Full.Equal(other.Full)
}

// BareEqual reports whether the two bare versions are equal. Shared-version
// groups are constrained on bare versions, so members may differ in
// pre-release or build metadata and still satisfy the group.
func (v *Version) BareEqual(other *Version) bool {
	return v.Bare.Equal(other.Bare)
}

func stripped(v *mmsemver.Version) *mmsemver.Version {
	bare, err := v.SetPrerelease("")
	if err != nil {
		// Clearing identifiers cannot fail.
		panic(err)
	}
	bare, err = bare.SetMetadata("")
	if err != nil {
		panic(err)
	}
	return &bare
}
