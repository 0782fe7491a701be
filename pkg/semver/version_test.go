package semver

import (
	"testing"

	"github.com/matzehuels/towline/pkg/errors"
)

func TestParse(t *testing.T) {
	v, err := Parse("1.2.3-rc.1+build.5")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if v.FullString != "1.2.3-rc.1+build.5" {
		t.Errorf("FullString = %q, want %q", v.FullString, "1.2.3-rc.1+build.5")
	}
	if v.BareString != "1.2.3" {
		t.Errorf("BareString = %q, want %q", v.BareString, "1.2.3")
	}
	if !v.IsPrerelease() {
		t.Error("IsPrerelease() = false, want true")
	}
}

func TestParse_RejectsPartialVersion(t *testing.T) {
	for _, raw := range []string{"1.0", "1", "v1.0.0.0", "not-a-version", ""} {
		_, err := Parse(raw)
		if err == nil {
			t.Errorf("Parse(%q) expected error, got nil", raw)
			continue
		}
		if errors.GetCode(err) != errors.ErrCodeInvalidVersion {
			t.Errorf("Parse(%q) code = %v, want %v", raw, errors.GetCode(err), errors.ErrCodeInvalidVersion)
		}
	}
}

func TestVersion_BareEqual(t *testing.T) {
	a := MustParse("1.2.3-alpha.1")
	b := MustParse("1.2.3-beta.2+exp")
	c := MustParse("1.2.4")

	if !a.BareEqual(b) {
		t.Errorf("BareEqual(%s, %s) = false, want true", a.FullString, b.FullString)
	}
	if a.BareEqual(c) {
		t.Errorf("BareEqual(%s, %s) = true, want false", a.FullString, c.FullString)
	}
	if a.Equal(b) {
		t.Errorf("Equal(%s, %s) = true, want false", a.FullString, b.FullString)
	}
}

func TestVersion_LessThan(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.1-alpha.1", "1.0.1", true},
		{"1.0.1-alpha.1", "1.0.1-beta.1", true},
		{"2.0.0", "1.9.9", false},
	}
	for _, tc := range cases {
		if got := MustParse(tc.a).LessThan(MustParse(tc.b)); got != tc.want {
			t.Errorf("LessThan(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
