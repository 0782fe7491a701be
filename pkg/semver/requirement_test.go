package semver

import (
	"testing"

	"github.com/matzehuels/towline/pkg/errors"
)

func TestSetRequirement(t *testing.T) {
	cases := []struct {
		req     string
		version string
		want    string
	}{
		{"1.0.0", "2.0.0", "2.0.0"},
		{"1.0", "2.0.0", "2.0"},
		{"1", "2.0.0", "2"},
		{"1.*", "2.0.0", "2.*"},
		{"1.*.*", "2.0.0", "2.*.*"},
		{"1.0.*", "2.0.0", "2.0.*"},
		{"^1.0.0", "2.0.0", "^2.0.0"},
		{"^1.0", "1.1.0", "^1.1"},
		{"^1", "2.0.0", "^2"},
		{"~1.0.0", "2.0.0", "~2.0.0"},
		{"~1.0", "2.0.0", "~2.0"},
		{"~1", "2.0.0", "~2"},
		{"=1.0.0", "2.0.0", "=2.0.0"},
		{"=1.0", "2.0.0", "=2.0"},
		// Spacing between operator and version is preserved.
		{"= 1.0.0", "2.0.0", "= 2.0.0"},
		{"= 1", "2.0.0", "= 2"},
		// Pre-release identifiers carry onto the rewritten comparator.
		{"^1.0.0", "2.0.0-alpha.1", "^2.0.0-alpha.1"},
		{"=1.0.0-rc.1", "1.0.0", "=1.0.0"},
	}
	for _, tc := range cases {
		got, changed, err := SetRequirement(tc.req, MustParse(tc.version).Full)
		if err != nil {
			t.Errorf("SetRequirement(%q, %s) error = %v", tc.req, tc.version, err)
			continue
		}
		if !changed {
			t.Errorf("SetRequirement(%q, %s) changed = false, want true", tc.req, tc.version)
			continue
		}
		if got != tc.want {
			t.Errorf("SetRequirement(%q, %s) = %q, want %q", tc.req, tc.version, got, tc.want)
		}
	}
}

func TestSetRequirement_NoChange(t *testing.T) {
	cases := []struct {
		req     string
		version string
	}{
		{"*", "2.0.0"},
		{"^1.2.3", "1.2.3"},
		{"1.*", "1.9.0"},
		{"= 1.0", "1.0.5"},
	}
	for _, tc := range cases {
		got, changed, err := SetRequirement(tc.req, MustParse(tc.version).Full)
		if err != nil {
			t.Errorf("SetRequirement(%q, %s) error = %v", tc.req, tc.version, err)
			continue
		}
		if changed {
			t.Errorf("SetRequirement(%q, %s) = %q, want no change", tc.req, tc.version, got)
		}
	}
}

func TestSetRequirement_RangesUnsupported(t *testing.T) {
	for _, req := range []string{">1.0", ">=1.0.0", "<2.0.0", "<=1.5", ">=1.0, <2.0"} {
		_, _, err := SetRequirement(req, MustParse("2.0.0").Full)
		if err == nil {
			t.Errorf("SetRequirement(%q) expected error, got nil", req)
			continue
		}
		if errors.GetCode(err) != errors.ErrCodeUnsupportedRequirement {
			t.Errorf("SetRequirement(%q) code = %v, want %v", req, errors.GetCode(err), errors.ErrCodeUnsupportedRequirement)
		}
	}
}

func TestSetRequirement_MultipleComparators(t *testing.T) {
	got, changed, err := SetRequirement("^1.0, ~1.2.0", MustParse("1.3.0").Full)
	if err != nil {
		t.Fatalf("SetRequirement() error = %v", err)
	}
	if !changed {
		t.Fatal("SetRequirement() changed = false, want true")
	}
	if got != "^1.3, ~1.3.0" {
		t.Errorf("SetRequirement() = %q, want %q", got, "^1.3, ~1.3.0")
	}
}

func TestRequirementMatches(t *testing.T) {
	cases := []struct {
		req     string
		version string
		want    bool
	}{
		{"^1.0.0", "1.5.0", true},
		{"^1.0.0", "2.0.0", false},
		{"~1.2.0", "1.2.9", true},
		{"~1.2.0", "1.3.0", false},
		{"*", "0.1.0", true},
	}
	for _, tc := range cases {
		got, err := RequirementMatches(tc.req, MustParse(tc.version).Full)
		if err != nil {
			t.Errorf("RequirementMatches(%q, %s) error = %v", tc.req, tc.version, err)
			continue
		}
		if got != tc.want {
			t.Errorf("RequirementMatches(%q, %s) = %v, want %v", tc.req, tc.version, got, tc.want)
		}
	}
}
