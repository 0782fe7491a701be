package semver

import (
	"testing"

	"github.com/matzehuels/towline/pkg/errors"
)

func TestBump_Numeric(t *testing.T) {
	cases := []struct {
		level   Level
		current string
		want    string
	}{
		{LevelMajor, "1.2.3", "2.0.0"},
		{LevelMinor, "1.2.3", "1.3.0"},
		{LevelPatch, "1.2.3", "1.2.4"},
		// Bumping a pre-release finalizes it without advancing the number.
		{LevelPatch, "1.2.3-rc.1", "1.2.3"},
		{LevelMajor, "1.2.3-rc.1", "2.0.0"},
		{LevelMinor, "1.2.3-beta.2", "1.3.0"},
	}
	for _, tc := range cases {
		got, err := tc.level.Bump(MustParse(tc.current), "")
		if err != nil {
			t.Errorf("Bump(%s, %s) error = %v", tc.level, tc.current, err)
			continue
		}
		if got.FullString != tc.want {
			t.Errorf("Bump(%s, %s) = %s, want %s", tc.level, tc.current, got.FullString, tc.want)
		}
	}
}

func TestBump_Ladder(t *testing.T) {
	cases := []struct {
		level   Level
		current string
		want    string
	}{
		// From a release version every rung opens on the next patch.
		{LevelAlpha, "1.0.0", "1.0.1-alpha.1"},
		{LevelBeta, "1.0.0", "1.0.1-beta.1"},
		{LevelRC, "1.0.0", "1.0.1-rc.1"},
		// Same rung increments the suffix.
		{LevelAlpha, "1.0.1-alpha.1", "1.0.1-alpha.2"},
		{LevelBeta, "1.0.1-beta.3", "1.0.1-beta.4"},
		{LevelRC, "1.0.1-rc.1", "1.0.1-rc.2"},
		// Climbing restarts the new rung at .1.
		{LevelBeta, "1.0.1-alpha.4", "1.0.1-beta.1"},
		{LevelRC, "1.0.1-beta.2", "1.0.1-rc.1"},
		// A bare label counts as suffix 0.
		{LevelAlpha, "1.0.1-alpha", "1.0.1-alpha.1"},
	}
	for _, tc := range cases {
		got, err := tc.level.Bump(MustParse(tc.current), "")
		if err != nil {
			t.Errorf("Bump(%s, %s) error = %v", tc.level, tc.current, err)
			continue
		}
		if got.FullString != tc.want {
			t.Errorf("Bump(%s, %s) = %s, want %s", tc.level, tc.current, got.FullString, tc.want)
		}
	}
}

func TestBump_LadderBackwardFails(t *testing.T) {
	cases := []struct {
		level   Level
		current string
	}{
		{LevelAlpha, "1.0.1-beta.1"},
		{LevelAlpha, "1.0.1-rc.1"},
		{LevelBeta, "1.0.1-rc.2"},
	}
	for _, tc := range cases {
		_, err := tc.level.Bump(MustParse(tc.current), "")
		if err == nil {
			t.Errorf("Bump(%s, %s) expected error, got nil", tc.level, tc.current)
			continue
		}
		if errors.GetCode(err) != errors.ErrCodeInvalidLevel {
			t.Errorf("Bump(%s, %s) code = %v, want %v", tc.level, tc.current, errors.GetCode(err), errors.ErrCodeInvalidLevel)
		}
	}
}

func TestBump_Release(t *testing.T) {
	got, err := LevelRelease.Bump(MustParse("1.0.1-rc.3"), "")
	if err != nil {
		t.Fatalf("Bump() error = %v", err)
	}
	if got.FullString != "1.0.1" {
		t.Errorf("Bump(release, 1.0.1-rc.3) = %s, want 1.0.1", got.FullString)
	}

	// Releasing an already-released version is a no-op.
	got, err = LevelRelease.Bump(MustParse("1.0.1"), "")
	if err != nil {
		t.Fatalf("Bump() error = %v", err)
	}
	if got != nil {
		t.Errorf("Bump(release, 1.0.1) = %s, want no change", got.FullString)
	}
}

func TestBump_MetadataOverwrites(t *testing.T) {
	got, err := LevelPatch.Bump(MustParse("1.0.0+old"), "new.1")
	if err != nil {
		t.Fatalf("Bump() error = %v", err)
	}
	if got.FullString != "1.0.1+new.1" {
		t.Errorf("Bump() = %s, want 1.0.1+new.1", got.FullString)
	}
}

func TestBump_NumericPrereleaseUnsupported(t *testing.T) {
	_, err := LevelAlpha.Bump(MustParse("1.0.0-1"), "")
	if err == nil {
		t.Fatal("expected error for numeric pre-release scheme, got nil")
	}
	if errors.GetCode(err) != errors.ErrCodeUnsupportedPrerelease {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnsupportedPrerelease)
	}
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("RC")
	if !ok || level != LevelRC {
		t.Errorf("ParseLevel(RC) = %v, %v, want %v, true", level, ok, LevelRC)
	}
	if _, ok := ParseLevel("1.2.3"); ok {
		t.Error("ParseLevel(1.2.3) = true, want false")
	}
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget("minor")
	if err != nil {
		t.Fatalf("ParseTarget(minor) error = %v", err)
	}
	if target.IsAbsolute() || target.Level() != LevelMinor {
		t.Errorf("ParseTarget(minor) = %v, want relative minor", target)
	}

	target, err = ParseTarget("2.0.0-rc.1")
	if err != nil {
		t.Fatalf("ParseTarget(2.0.0-rc.1) error = %v", err)
	}
	if !target.IsAbsolute() {
		t.Error("ParseTarget(2.0.0-rc.1) not absolute")
	}

	if _, err := ParseTarget("bogus"); err == nil {
		t.Error("ParseTarget(bogus) expected error, got nil")
	}
}

func TestTarget_ResolveAbsolute(t *testing.T) {
	target, _ := ParseTarget("2.0.0")

	next, err := target.Resolve(MustParse("1.5.0"), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if next.FullString != "2.0.0" {
		t.Errorf("Resolve() = %s, want 2.0.0", next.FullString)
	}

	// Targeting the current version needs no change.
	next, err = target.Resolve(MustParse("2.0.0"), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if next != nil {
		t.Errorf("Resolve() = %s, want no change", next.FullString)
	}
}
