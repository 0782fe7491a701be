package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/towline/pkg/cargo"
	"github.com/matzehuels/towline/pkg/config"
	"github.com/matzehuels/towline/pkg/gitops"
	"github.com/matzehuels/towline/pkg/pipeline"
	"github.com/matzehuels/towline/pkg/plan"
	"github.com/matzehuels/towline/pkg/registry"
	"github.com/matzehuels/towline/pkg/semver"
	"github.com/matzehuels/towline/pkg/shell"
	"github.com/matzehuels/towline/pkg/workspace"
)

// releaseOpts holds the command-line flags shared by the release command
// and its per-phase subcommands.
type releaseOpts struct {
	workspaceRoot  string
	execute        bool
	noConfirm      bool
	exclude        []string
	metadata       string
	configPath     string
	prevTagName    string
	publishTimeout time.Duration
	noCache        bool

	// config overrides; applied only when the flag was set
	noPublish        bool
	noPush           bool
	noTag            bool
	noVerify         bool
	sign             bool
	devVersion       bool
	allowBranch      []string
	dependentVersion string
}

// newReleaseCmd creates the release command and its per-phase subcommands.
// The positional argument selects the bump: a level name (major, minor,
// patch, alpha, beta, rc, release) or an absolute version. Without
// --execute the command previews the release.
func newReleaseCmd() *cobra.Command {
	opts := &releaseOpts{workspaceRoot: ".", publishTimeout: 5 * time.Minute}

	cmd := &cobra.Command{
		Use:   "release [LEVEL|VERSION]",
		Short: "Plan and run a workspace release",
		Long: `Plan and run a release of every releasable workspace package.

The optional argument is either a bump level (major, minor, patch, alpha,
beta, rc, release) or an absolute version. Without an argument, release
finalizes any pending pre-release versions.

By default the command is a dry-run that previews every step. Pass
--execute to apply.

Examples:
  towline release patch --execute
  towline release 2.0.0-rc.1 --execute
  towline release minor --exclude internal-tools`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runStep(c, opts, pipeline.StepAll, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.workspaceRoot, "path", "C", opts.workspaceRoot, "workspace directory")
	cmd.PersistentFlags().BoolVarP(&opts.execute, "execute", "x", false, "apply changes instead of previewing them")
	cmd.PersistentFlags().BoolVar(&opts.noConfirm, "no-confirm", false, "skip the confirmation prompt")
	cmd.PersistentFlags().StringArrayVar(&opts.exclude, "exclude", nil, "package to exclude from the release (repeatable)")
	cmd.PersistentFlags().StringVarP(&opts.metadata, "metadata", "m", "", "build metadata to attach to the new version")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "custom configuration file")
	cmd.PersistentFlags().StringVar(&opts.prevTagName, "prev-tag-name", "", "override the previous tag used for change detection")
	cmd.PersistentFlags().DurationVar(&opts.publishTimeout, "publish-timeout", opts.publishTimeout, "how long to wait for a publish to become visible")
	cmd.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "bypass the registry response cache")

	cmd.PersistentFlags().BoolVar(&opts.noPublish, "no-publish", false, "skip publishing to the registry")
	cmd.PersistentFlags().BoolVar(&opts.noPush, "no-push", false, "skip pushing to the remote")
	cmd.PersistentFlags().BoolVar(&opts.noTag, "no-tag", false, "skip tagging")
	cmd.PersistentFlags().BoolVar(&opts.noVerify, "no-verify", false, "publish without verification builds")
	cmd.PersistentFlags().BoolVar(&opts.sign, "sign", false, "GPG-sign commits and tags")
	cmd.PersistentFlags().BoolVar(&opts.devVersion, "dev-version", false, "bump to a development version after releasing")
	cmd.PersistentFlags().StringArrayVar(&opts.allowBranch, "allow-branch", nil, "branch glob allowed to release from (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.dependentVersion, "dependent-version", "", "policy for dependent requirements (ignore, warn, error, fix, upgrade)")

	cmd.AddCommand(stepCmd(opts, pipeline.StepVersion, "version [LEVEL|VERSION]",
		"Write the new versions into manifests", cobra.MaximumNArgs(1)))
	cmd.AddCommand(stepCmd(opts, pipeline.StepReplace, "replace",
		"Run the configured pre-release replacements", cobra.NoArgs))
	cmd.AddCommand(stepCmd(opts, pipeline.StepCommit, "commit",
		"Commit staged release changes", cobra.NoArgs))
	cmd.AddCommand(stepCmd(opts, pipeline.StepPublish, "publish",
		"Publish packages to the registry", cobra.NoArgs))
	cmd.AddCommand(stepCmd(opts, pipeline.StepTag, "tag",
		"Create release tags", cobra.NoArgs))
	cmd.AddCommand(stepCmd(opts, pipeline.StepPush, "push",
		"Push the branch and tags to the remote", cobra.NoArgs))

	return cmd
}

// stepCmd creates a subcommand that runs a single pipeline phase.
func stepCmd(opts *releaseOpts, step pipeline.Step, use, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(c *cobra.Command, args []string) error {
			return runStep(c, opts, step, args)
		},
	}
}

// overrides builds the command-line configuration layer. Only flags the
// user actually set contribute, so file-based configuration wins otherwise.
func (o *releaseOpts) overrides(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	flags := cmd.Flags()

	setBool := func(name string, invert bool, dst **bool) {
		if flags.Changed(name) {
			v := !invert
			*dst = &v
		}
	}
	setBool("no-publish", true, &cfg.Publish)
	setBool("no-push", true, &cfg.Push)
	setBool("no-tag", true, &cfg.Tag)
	setBool("no-verify", true, &cfg.Verify)
	setBool("dev-version", false, &cfg.DevVersion)
	if flags.Changed("sign") {
		v := o.sign
		cfg.SignCommit = &v
		cfg.SignTag = &v
	}
	if flags.Changed("allow-branch") {
		cfg.AllowBranch = o.allowBranch
	}
	if flags.Changed("dependent-version") {
		policy, err := config.ParseDependentVersion(o.dependentVersion)
		if err != nil {
			return config.Config{}, err
		}
		cfg.DependentVersion = &policy
	}
	return cfg, nil
}

// changeLister adapts gitops.Git to the context-free interface the planner
// uses for exclusion reporting.
type changeLister struct {
	ctx context.Context
	git *gitops.Git
}

func (c changeLister) ChangedFiles(sinceRef string) ([]string, error) {
	return c.git.ChangedFiles(c.ctx, sinceRef)
}

// cargoManifests adapts the cargo package functions to the pipeline's
// manifest collaborator.
type cargoManifests struct{}

func (cargoManifests) SetPackageVersion(manifestPath, version string) error {
	return cargo.SetPackageVersion(manifestPath, version)
}

func (cargoManifests) SetDependencyVersion(manifestPath, dep, requirement string) error {
	return cargo.SetDependencyVersion(manifestPath, dep, requirement)
}

func (cargoManifests) UpdateLock(ctx context.Context, workspaceRoot string) error {
	return cargo.UpdateLock(ctx, workspaceRoot)
}

func (cargoManifests) Publish(ctx context.Context, pkgRoot string, opts cargo.PublishOptions) error {
	return cargo.Publish(ctx, pkgRoot, opts)
}

// spinnerRegistry shows a spinner during the publish visibility wait; all
// other registry calls pass straight through.
type spinnerRegistry struct {
	*registry.Client
}

func (s spinnerRegistry) WaitForPublish(ctx context.Context, name, version string, timeout time.Duration) error {
	sp := newSpinner(ctx, fmt.Sprintf("waiting for %s %s to appear on crates.io", name, version))
	sp.Start()
	defer sp.Stop()
	return s.Client.WaitForPublish(ctx, name, version, timeout)
}

// hookRunner runs pre-release hooks through the shell package.
type hookRunner struct{}

func (hookRunner) Run(ctx context.Context, dir string, env map[string]string, command ...string) error {
	return shell.Run(ctx, dir, env, command...)
}

// runStep loads the workspace, builds the release plan, and runs the
// requested pipeline step over it.
func runStep(cmd *cobra.Command, opts *releaseOpts, step pipeline.Step, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	target := semver.TargetLevel(semver.LevelRelease)
	if len(args) > 0 {
		t, err := semver.ParseTarget(args[0])
		if err != nil {
			return err
		}
		target = t
	}

	overrides, err := opts.overrides(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(opts.workspaceRoot)
	if err != nil {
		return err
	}
	ws, err := workspace.Load(root)
	if err != nil {
		return err
	}
	logger.Debug("loaded workspace", "root", ws.Root, "members", len(ws.Members))

	resolver, err := config.NewResolver(ws, opts.configPath, overrides)
	if err != nil {
		return err
	}

	runDate := time.Now().UTC().Format("2006-01-02")
	pkgs, err := plan.Load(ws, resolver, plan.Options{Date: runDate, PrevTagName: opts.prevTagName})
	if err != nil {
		return err
	}

	for _, p := range pkgs {
		if err := p.Bump(target, opts.metadata); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}

	git := gitops.New(ws.Root)
	if len(opts.exclude) > 0 {
		plan.Exclude(logger, pkgs, opts.exclude, changeLister{ctx: ctx, git: git}, ws.Root, ws.LockPath)
	}
	if err := plan.PlanShared(pkgs); err != nil {
		printError("%v", err)
		return exitError{outcome: pipeline.OutcomeSharedDeviation}
	}
	if err := plan.Finish(pkgs, runDate); err != nil {
		return err
	}

	printPlan(pkgs, opts.execute)

	registryClient := spinnerRegistry{registry.NewClient(newRegistryCache(opts.noCache), defaultCacheTTL)}
	runner := pipeline.New(ws, pkgs, git, cargoManifests{}, registryClient, hookRunner{}, stdinConfirmer{},
		pipeline.Options{
			Execute:        opts.execute,
			NoConfirm:      opts.noConfirm,
			Date:           runDate,
			RunID:          uuid.NewString(),
			PublishTimeout: opts.publishTimeout,
			Logger:         logger,
		})

	outcome := runner.RunStep(ctx, step)
	if outcome != pipeline.OutcomeSuccess {
		return exitError{outcome: outcome}
	}
	if opts.execute {
		printSuccess("release complete")
	} else {
		printInfo("dry-run complete, re-run with %s to apply", StyleHighlight.Render("--execute"))
	}
	return nil
}

// printPlan shows the planned version transitions before the pipeline runs.
func printPlan(pkgs []*plan.PackageRelease, execute bool) {
	var lines int
	for _, p := range pkgs {
		if p.Selected && p.PlannedVersion != nil {
			lines++
		}
	}
	if lines == 0 {
		printWarning("no version changes planned")
		return
	}

	mode := "dry-run"
	if execute {
		mode = "release"
	}
	fmt.Println(StyleTitle.Render(fmt.Sprintf("%s plan", mode)) + " " +
		StyleDim.Render(fmt.Sprintf("(%s)", pluralize(lines, "package"))))
	for _, p := range pkgs {
		if !p.Selected || p.PlannedVersion == nil {
			continue
		}
		printVersionChange(p.Name(), p.PrevVersion.FullString, p.PlannedVersion.FullString)
		if p.PlannedTag != "" {
			fmt.Println("    " + StyleDim.Render("tag "+p.PlannedTag))
		}
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
