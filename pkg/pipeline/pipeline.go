// Package pipeline executes the release plan through an ordered sequence
// of phases: preflight verification, double-publish guard, change audit,
// confirmation, version application, publish, tag, post-release bump, and
// push.
//
// Two modes exist. Dry-run (the default) describes every mutation instead
// of applying it and accumulates verification failures into one aggregate
// outcome. Execute mode aborts on the first failure, leaving completed
// phases' side effects in place; re-running is idempotent because
// already-published versions and already-existing tags are detected and
// skipped.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/towline/pkg/cargo"
)

// Git is the version-control collaborator.
type Git interface {
	IsDirty(ctx context.Context) (bool, error)
	CurrentBranch(ctx context.Context) (string, error)
	Fetch(ctx context.Context, remote string) error
	IsBehindRemote(ctx context.Context, remote, branch string) (bool, error)
	TagExists(ctx context.Context, name string) (bool, error)
	ChangedFiles(ctx context.Context, sinceRef string) ([]string, error)
	CommitAll(ctx context.Context, message string, sign bool) error
	Tag(ctx context.Context, name, message string, sign bool) error
	Push(ctx context.Context, remote string, refs []string, pushOptions []string) error
}

// Manifests is the package-manager collaborator.
type Manifests interface {
	SetPackageVersion(manifestPath, version string) error
	SetDependencyVersion(manifestPath, dep, requirement string) error
	UpdateLock(ctx context.Context, workspaceRoot string) error
	Publish(ctx context.Context, pkgRoot string, opts cargo.PublishOptions) error
}

// Registry is the package-index collaborator.
type Registry interface {
	IsPublished(ctx context.Context, name, version string, refresh bool) (bool, error)
	WaitForPublish(ctx context.Context, name, version string, timeout time.Duration) error
}

// HookRunner runs pre-release hook commands.
type HookRunner interface {
	Run(ctx context.Context, dir string, env map[string]string, command ...string) error
}

// Confirmer asks the operator to approve the plan.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Options configure one pipeline run.
type Options struct {
	// Execute applies mutations; false is dry-run.
	Execute bool
	// NoConfirm skips the interactive confirmation.
	NoConfirm bool
	// Date is the run's shared calendar date, computed once by the caller.
	Date string
	// RunID identifies this invocation in logs.
	RunID string
	// PublishTimeout bounds the post-publish visibility poll.
	PublishTimeout time.Duration
	// Logger defaults to log.Default().
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 5 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Date == "" {
		o.Date = time.Now().UTC().Format("2006-01-02")
	}
	return o
}
