// Package gitops wraps the git CLI for the pipeline's version-control
// operations. Every call shells out; no libgit bindings, so behavior
// matches whatever git the operator has configured (signing, hooks,
// credential helpers).
package gitops

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/towline/pkg/shell"
)

// Git operates on a repository rooted at a fixed directory.
type Git struct {
	root string
}

// New returns a Git bound to the repository at root.
func New(root string) *Git {
	return &Git{root: root}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	out, err := shell.Output(ctx, g.root, append([]string{"git"}, args...)...)
	text := strings.TrimSpace(out)
	if err != nil {
		if text != "" {
			return text, fmt.Errorf("git %s: %w: %s", args[0], err, text)
		}
		return text, fmt.Errorf("git %s: %w", args[0], err)
	}
	return text, nil
}

// IsDirty reports whether the working tree has uncommitted changes,
// including untracked files.
func (g *Git) IsDirty(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// Fetch updates the remote tracking refs for remote.
func (g *Git) Fetch(ctx context.Context, remote string) error {
	_, err := g.run(ctx, "fetch", remote)
	return err
}

// IsBehindRemote reports whether branch has commits on remote that are not
// local. Call Fetch first for a current answer. A branch with no remote
// counterpart is not behind.
func (g *Git) IsBehindRemote(ctx context.Context, remote, branch string) (bool, error) {
	upstream := remote + "/" + branch
	if _, err := g.run(ctx, "rev-parse", "-q", "--verify", upstream); err != nil {
		return false, nil
	}
	out, err := g.run(ctx, "rev-list", "--count", "HEAD.."+upstream)
	if err != nil {
		return false, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return false, fmt.Errorf("unexpected rev-list output %q", out)
	}
	return n > 0, nil
}

// TagExists reports whether the tag name exists in the repository.
func (g *Git) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := g.run(ctx, "rev-parse", "-q", "--verify", "refs/tags/"+name)
	if err != nil {
		// rev-parse -q exits non-zero for a missing ref.
		return false, nil
	}
	return true, nil
}

// ChangedFiles lists the paths touched since sinceRef. A nil slice with nil
// error means the ref could not be resolved (for example the previous tag
// was never created), which callers treat as "history unknown".
func (g *Git) ChangedFiles(ctx context.Context, sinceRef string) ([]string, error) {
	if _, err := g.run(ctx, "rev-parse", "-q", "--verify", sinceRef); err != nil {
		return nil, nil
	}
	out, err := g.run(ctx, "diff", "--name-only", sinceRef+"..HEAD")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

// CommitAll stages every tracked change and commits with message.
func (g *Git) CommitAll(ctx context.Context, message string, sign bool) error {
	args := []string{"commit", "--all", "--message", message}
	if sign {
		args = append(args, "--gpg-sign")
	}
	_, err := g.run(ctx, args...)
	return err
}

// Tag creates an annotated tag with the given message.
func (g *Git) Tag(ctx context.Context, name, message string, sign bool) error {
	args := []string{"tag", "--annotate", name, "--message", message}
	if sign {
		args = append(args, "--sign")
	}
	_, err := g.run(ctx, args...)
	return err
}

// Push pushes the given refs to remote. With no refs, the current branch's
// default push behavior applies.
func (g *Git) Push(ctx context.Context, remote string, refs []string, pushOptions []string) error {
	args := []string{"push"}
	for _, opt := range pushOptions {
		args = append(args, "--push-option", opt)
	}
	args = append(args, remote)
	args = append(args, refs...)
	_, err := g.run(ctx, args...)
	return err
}
