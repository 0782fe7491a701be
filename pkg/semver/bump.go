package semver

import (
	"fmt"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"

	"github.com/matzehuels/towline/pkg/errors"
)

// Pre-release ladder labels, in rung order.
const (
	labelAlpha = "alpha"
	labelBeta  = "beta"
	labelRC    = "rc"
)

// Level is a version bump level.
//
// Major, Minor, and Patch bump the corresponding numeric component and reset
// the pre-release ladder. Alpha, Beta, and Rc are rungs on the ladder with
// the strict ordering alpha < beta < rc: stepping backward is an error.
// Release strips the pre-release identifier without touching the numeric
// components.
type Level int

const (
	LevelMajor Level = iota
	LevelMinor
	LevelPatch
	LevelAlpha
	LevelBeta
	LevelRC
	LevelRelease
)

var levelNames = map[Level]string{
	LevelMajor:   "major",
	LevelMinor:   "minor",
	LevelPatch:   "patch",
	LevelAlpha:   "alpha",
	LevelBeta:    "beta",
	LevelRC:      "rc",
	LevelRelease: "release",
}

// ParseLevel converts a level name ("major", "rc", ...) to a Level.
// The second return value is false if name is not a level name.
func ParseLevel(name string) (Level, bool) {
	for level, n := range levelNames {
		if n == strings.ToLower(name) {
			return level, true
		}
	}
	return 0, false
}

// String returns the level's name.
func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// IsPrerelease reports whether the level is a rung on the pre-release ladder.
func (l Level) IsPrerelease() bool {
	return l == LevelAlpha || l == LevelBeta || l == LevelRC
}

// Bump applies the level to current and returns the resulting version.
//
// A nil result with a nil error means no change is needed; this happens only
// for LevelRelease on a version without a pre-release identifier. A non-empty
// metadata always overwrites the build metadata of the result.
//
// Ladder stepping: advancing within the current rung increments its numeric
// suffix (a missing suffix counts as 0); advancing from a release version or
// from below starts the rung at .1 and, when coming from a release version,
// also increments patch. Stepping to a rung at or below the current one from
// a different rung fails with INVALID_RELEASE_LEVEL.
func (l Level) Bump(current *Version, metadata string) (*Version, error) {
	full := current.Full

	var next mmsemver.Version
	switch l {
	case LevelMajor:
		next = full.IncMajor()
	case LevelMinor:
		next = full.IncMinor()
	case LevelPatch:
		// IncPatch on a pre-release version clears the identifier without
		// bumping patch, matching the ladder's "finalize" semantics.
		next = full.IncPatch()
	case LevelAlpha:
		stepped, err := stepLadder(full, labelAlpha, labelBeta, labelRC)
		if err != nil {
			return nil, err
		}
		next = *stepped
	case LevelBeta:
		stepped, err := stepLadder(full, labelBeta, labelRC)
		if err != nil {
			return nil, err
		}
		next = *stepped
	case LevelRC:
		stepped, err := stepLadder(full, labelRC)
		if err != nil {
			return nil, err
		}
		next = *stepped
	case LevelRelease:
		if full.Prerelease() == "" {
			return nil, nil
		}
		cleared, err := full.SetPrerelease("")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "clearing pre-release of %s", current.FullString)
		}
		next = cleared
	default:
		return nil, errors.New(errors.ErrCodeInternal, "unknown bump level %d", int(l))
	}

	if metadata != "" {
		withMeta, err := next.SetMetadata(metadata)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid build metadata %q", metadata)
		}
		next = withMeta
	}

	return New(&next), nil
}

// stepLadder advances v to the given rung. higher lists the rungs strictly
// above rung; finding the current version on one of those is an error.
func stepLadder(v *mmsemver.Version, rung string, higher ...string) (*mmsemver.Version, error) {
	label, num, err := prereleaseIDVersion(v)
	if err != nil {
		return nil, err
	}

	if label == "" {
		// Release version: start the rung at .1 on the next patch.
		next := v.IncPatch()
		next, err = next.SetPrerelease(rung + ".1")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPrerelease, err, "starting %s pre-release", rung)
		}
		return &next, nil
	}

	for _, h := range higher {
		if label == h {
			return nil, errors.New(errors.ErrCodeInvalidLevel,
				"cannot bump to %s: %s is already past it on the pre-release ladder", rung, label)
		}
	}

	suffix := uint64(1)
	if label == rung {
		suffix = num + 1
	}
	next, err := v.SetPrerelease(fmt.Sprintf("%s.%d", rung, suffix))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPrerelease, err, "stepping %s pre-release", rung)
	}
	return &next, nil
}

// prereleaseIDVersion reads the version's pre-release identifier as a
// (label, numeric suffix) pair. A release version returns ("", 0, nil).
// Identifiers that start with a numeric component (e.g. "-1") use a scheme
// the ladder cannot reason about and are rejected.
func prereleaseIDVersion(v *mmsemver.Version) (string, uint64, error) {
	pre := v.Prerelease()
	if pre == "" {
		return "", 0, nil
	}

	parts := strings.Split(pre, ".")
	if isNumeric(parts[0]) {
		return "", 0, errors.New(errors.ErrCodeUnsupportedPrerelease,
			"pre-release %q starts with a numeric identifier", pre)
	}
	if len(parts) == 1 {
		return parts[0], 0, nil
	}
	n, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, errors.New(errors.ErrCodeUnsupportedPrerelease,
			"pre-release %q has a non-numeric suffix", pre)
	}
	return parts[0], n, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
