package cargo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSetPackageVersion(t *testing.T) {
	path := writeManifest(t, `# release tooling test fixture
[package]
name = "api"
version = "1.0.0"   # bumped by tooling
edition = "2021"

[dependencies]
core = { version = "1.0", path = "../core" }
`)

	if err := SetPackageVersion(path, "1.1.0"); err != nil {
		t.Fatalf("SetPackageVersion() error = %v", err)
	}

	want := `# release tooling test fixture
[package]
name = "api"
version = "1.1.0"   # bumped by tooling
edition = "2021"

[dependencies]
core = { version = "1.0", path = "../core" }
`
	if got := readFile(t, path); got != want {
		t.Errorf("manifest = %q, want %q", got, want)
	}
}

func TestSetPackageVersion_IgnoresDependencyVersions(t *testing.T) {
	path := writeManifest(t, `[dependencies]
serde = { version = "1.0" }

[package]
name = "api"
version = "0.1.0"
`)

	if err := SetPackageVersion(path, "0.2.0"); err != nil {
		t.Fatalf("SetPackageVersion() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, `serde = { version = "1.0" }`) {
		t.Errorf("dependency line was touched: %q", got)
	}
	if !strings.Contains(got, `version = "0.2.0"`) {
		t.Errorf("package version not updated: %q", got)
	}
}

func TestSetDependencyVersion_BareString(t *testing.T) {
	path := writeManifest(t, `[package]
name = "b"
version = "1.0.0"

[dependencies]
a = "1.0"
serde = "1.0"
`)

	if err := SetDependencyVersion(path, "a", "^1.0.1"); err != nil {
		t.Fatalf("SetDependencyVersion() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, `a = "^1.0.1"`) {
		t.Errorf("requirement not rewritten: %q", got)
	}
	if !strings.Contains(got, `serde = "1.0"`) {
		t.Errorf("unrelated dependency touched: %q", got)
	}
}

func TestSetDependencyVersion_InlineTable(t *testing.T) {
	path := writeManifest(t, `[dependencies]
a = { version = "1.0", path = "../a", features = ["std"] }
`)

	if err := SetDependencyVersion(path, "a", "1.1"); err != nil {
		t.Fatalf("SetDependencyVersion() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, `a = { version = "1.1", path = "../a", features = ["std"] }`) {
		t.Errorf("inline table not rewritten in place: %q", got)
	}
}

func TestSetDependencyVersion_DottedSection(t *testing.T) {
	path := writeManifest(t, `[dependencies.a]
version = "1.0"
path = "../a"

[dev-dependencies]
a = "1.0"
`)

	if err := SetDependencyVersion(path, "a", "2.0"); err != nil {
		t.Fatalf("SetDependencyVersion() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, "version = \"2.0\"\npath = \"../a\"") {
		t.Errorf("dotted section not rewritten: %q", got)
	}
	if !strings.Contains(got, `a = "2.0"`) {
		t.Errorf("dev-dependency not rewritten: %q", got)
	}
}

func TestSetDependencyVersion_MissingDependency(t *testing.T) {
	path := writeManifest(t, `[dependencies]
serde = "1.0"
`)

	if err := SetDependencyVersion(path, "a", "2.0"); err == nil {
		t.Error("SetDependencyVersion() expected error for absent dependency, got nil")
	}
}
