package cargo

import (
	"context"

	"github.com/matzehuels/towline/pkg/shell"
)

// PublishOptions control one cargo publish invocation.
type PublishOptions struct {
	// Verify runs the verification build. Dry-running a multi-package
	// workspace should disable it, since dependents reference versions not
	// yet in the registry.
	Verify   bool
	Registry string // empty means the default registry
	Target   string
	Features []string
}

// UpdateLock refreshes the workspace lock file after manifest versions
// changed.
func UpdateLock(ctx context.Context, workspaceRoot string) error {
	return shell.Run(ctx, workspaceRoot, nil, "cargo", "update", "--workspace", "--offline")
}

// Publish uploads the package at pkgRoot to the registry.
func Publish(ctx context.Context, pkgRoot string, opts PublishOptions) error {
	args := []string{"cargo", "publish"}
	if !opts.Verify {
		args = append(args, "--no-verify")
	}
	if opts.Registry != "" {
		args = append(args, "--registry", opts.Registry)
	}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	for _, f := range opts.Features {
		args = append(args, "--features", f)
	}
	return shell.Run(ctx, pkgRoot, nil, args...)
}
