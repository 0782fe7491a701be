package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates a repository with one commit and returns it.
func initRepo(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	root := t.TempDir()
	g := New(root)
	ctx := context.Background()

	for _, args := range [][]string{
		{"init", "--initial-branch", "main"},
		{"config", "user.name", "tester"},
		{"config", "user.email", "tester@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		if _, err := g.run(ctx, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}

	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\nname = \"x\"\nversion = \"1.0.0\"\n")
	if _, err := g.run(ctx, "add", "."); err != nil {
		t.Fatal(err)
	}
	if err := g.CommitAll(ctx, "init", false); err != nil {
		t.Fatalf("CommitAll() error = %v", err)
	}
	return g
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsDirty(t *testing.T) {
	g := initRepo(t)
	ctx := context.Background()

	dirty, err := g.IsDirty(ctx)
	if err != nil {
		t.Fatalf("IsDirty() error = %v", err)
	}
	if dirty {
		t.Error("IsDirty() = true on clean tree")
	}

	writeFile(t, filepath.Join(g.root, "Cargo.toml"), "[package]\nname = \"x\"\nversion = \"1.0.1\"\n")
	dirty, err = g.IsDirty(ctx)
	if err != nil {
		t.Fatalf("IsDirty() error = %v", err)
	}
	if !dirty {
		t.Error("IsDirty() = false after modifying a tracked file")
	}
}

func TestCurrentBranch(t *testing.T) {
	g := initRepo(t)

	branch, err := g.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch() = %q, want main", branch)
	}
}

func TestTagExists(t *testing.T) {
	g := initRepo(t)
	ctx := context.Background()

	exists, err := g.TagExists(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() error = %v", err)
	}
	if exists {
		t.Error("TagExists() = true before tagging")
	}

	if err := g.Tag(ctx, "v1.0.0", "release 1.0.0", false); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}

	exists, err = g.TagExists(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() error = %v", err)
	}
	if !exists {
		t.Error("TagExists() = false after tagging")
	}
}

func TestChangedFiles(t *testing.T) {
	g := initRepo(t)
	ctx := context.Background()

	if err := g.Tag(ctx, "x-v1.0.0", "release", false); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(g.root, "src.rs"), "fn main() {}\n")
	if _, err := g.run(ctx, "add", "."); err != nil {
		t.Fatal(err)
	}
	if err := g.CommitAll(ctx, "change", false); err != nil {
		t.Fatal(err)
	}

	files, err := g.ChangedFiles(ctx, "x-v1.0.0")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if len(files) != 1 || files[0] != "src.rs" {
		t.Errorf("ChangedFiles() = %v, want [src.rs]", files)
	}

	// Unresolvable ref signals "history unknown" with a nil slice.
	files, err = g.ChangedFiles(ctx, "no-such-tag")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if files != nil {
		t.Errorf("ChangedFiles(missing ref) = %v, want nil", files)
	}
}

func TestIsBehindRemote_NoUpstream(t *testing.T) {
	g := initRepo(t)

	behind, err := g.IsBehindRemote(context.Background(), "origin", "main")
	if err != nil {
		t.Fatalf("IsBehindRemote() error = %v", err)
	}
	if behind {
		t.Error("IsBehindRemote() = true with no remote configured")
	}
}
