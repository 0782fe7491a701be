package semver

import "github.com/matzehuels/towline/pkg/errors"

// Target is what an invocation asked the version to become: either a bump
// level relative to the current version, or an absolute version.
type Target struct {
	level    Level
	absolute *Version
}

// TargetLevel returns a relative target for the given bump level.
func TargetLevel(level Level) Target {
	return Target{level: level}
}

// TargetVersion returns an absolute target for the given version.
func TargetVersion(v *Version) Target {
	return Target{absolute: v}
}

// ParseTarget interprets raw as a level name first, then as an absolute
// version. "patch" is a level; "1.2.3" is an absolute version.
func ParseTarget(raw string) (Target, error) {
	if level, ok := ParseLevel(raw); ok {
		return TargetLevel(level), nil
	}
	v, err := Parse(raw)
	if err != nil {
		return Target{}, err
	}
	return TargetVersion(v), nil
}

// IsAbsolute reports whether the target names an explicit version.
func (t Target) IsAbsolute() bool { return t.absolute != nil }

// Level returns the bump level of a relative target. Only meaningful when
// IsAbsolute is false.
func (t Target) Level() Level { return t.level }

// String renders the target the way the user wrote it.
func (t Target) String() string {
	if t.absolute != nil {
		return t.absolute.FullString
	}
	return t.level.String()
}

// Resolve computes the version current should become. A nil result with nil
// error means no change is needed: a Release bump of an already-released
// version, or an absolute target equal to current.
func (t Target) Resolve(current *Version, metadata string) (*Version, error) {
	if t.absolute == nil {
		return t.level.Bump(current, metadata)
	}

	next := t.absolute
	if metadata != "" {
		withMeta, err := next.Full.SetMetadata(metadata)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid build metadata %q", metadata)
		}
		next = New(&withMeta)
	}
	if next.Equal(current) {
		return nil, nil
	}
	return next, nil
}
