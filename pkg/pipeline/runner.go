package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/towline/pkg/cargo"
	"github.com/matzehuels/towline/pkg/config"
	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/plan"
	"github.com/matzehuels/towline/pkg/replace"
	"github.com/matzehuels/towline/pkg/semver"
	"github.com/matzehuels/towline/pkg/workspace"
)

// Step selects which part of the pipeline a run executes. The release
// command runs StepAll; the per-phase subcommands run a single step.
type Step int

const (
	StepAll Step = iota
	StepVersion
	StepReplace
	StepCommit
	StepPublish
	StepTag
	StepPush
)

// Runner executes the release plan.
type Runner struct {
	ws        *workspace.Workspace
	pkgs      []*plan.PackageRelease
	git       Git
	manifests Manifests
	registry  Registry
	hooks     HookRunner
	confirm   Confirmer
	opts      Options
	log       *log.Logger

	failures    []failure
	createdTags []string
	declined    bool
}

type failure struct {
	outcome Outcome
	message string
}

// New builds a Runner over the planned packages.
func New(ws *workspace.Workspace, pkgs []*plan.PackageRelease, git Git, manifests Manifests,
	registry Registry, hooks HookRunner, confirm Confirmer, opts Options) *Runner {
	opts = opts.withDefaults()
	return &Runner{
		ws:        ws,
		pkgs:      pkgs,
		git:       git,
		manifests: manifests,
		registry:  registry,
		hooks:     hooks,
		confirm:   confirm,
		opts:      opts,
		log:       opts.Logger.With("run", opts.RunID),
	}
}

// selected returns the packages participating in this run.
func (r *Runner) selected() []*plan.PackageRelease {
	var out []*plan.PackageRelease
	for _, p := range r.pkgs {
		if p.Selected {
			out = append(out, p)
		}
	}
	return out
}

// fail records a verification or process failure. In execute mode the
// first failure aborts; in dry-run failures accumulate into one aggregate
// outcome at the end.
func (r *Runner) fail(o Outcome, format string, args ...any) (Outcome, bool) {
	msg := fmt.Sprintf(format, args...)
	if r.opts.Execute {
		r.log.Error(msg, "outcome", int(o))
		return o, true
	}
	r.log.Warn("dry-run: "+msg, "outcome", int(o))
	r.failures = append(r.failures, failure{outcome: o, message: msg})
	return OutcomeSuccess, false
}

func (r *Runner) finish() Outcome {
	if len(r.failures) > 0 {
		r.log.Error("dry-run would have failed", "failures", len(r.failures))
		return OutcomeDryRunFailed
	}
	if !r.opts.Execute {
		r.log.Info("dry-run complete; re-run with --execute to apply")
	}
	return OutcomeSuccess
}

// Run executes the selected step. For StepAll the full phase sequence
// runs; single steps run only their own phase.
func (r *Runner) Run(ctx context.Context) Outcome {
	return r.RunStep(ctx, StepAll)
}

// RunStep executes one step of the pipeline, or everything for StepAll.
func (r *Runner) RunStep(ctx context.Context, step Step) Outcome {
	switch step {
	case StepVersion:
		if o, abort := r.applyVersions(ctx, false); abort {
			return o
		}
		return r.finish()
	case StepReplace:
		if o, abort := r.applyReplacements(); abort {
			return o
		}
		return r.finish()
	case StepCommit:
		if o, abort := r.commitAll(ctx); abort {
			return o
		}
		return r.finish()
	case StepPublish:
		if o, abort := r.publish(ctx); abort {
			return o
		}
		return r.finish()
	case StepTag:
		if o, abort := r.tag(ctx); abort {
			return o
		}
		return r.finish()
	case StepPush:
		if o, abort := r.push(ctx); abort {
			return o
		}
		return r.finish()
	}

	phases := []func(context.Context) (Outcome, bool){
		r.preflight,
		r.guardDoublePublish,
		r.auditChanges,
		r.confirmPlan,
		func(ctx context.Context) (Outcome, bool) { return r.applyVersions(ctx, true) },
		r.publish,
		r.tag,
		r.postRelease,
		r.push,
	}
	for _, phase := range phases {
		if o, abort := phase(ctx); abort {
			return o
		}
		if r.declined {
			r.log.Info("release cancelled by operator")
			return OutcomeSuccess
		}
	}
	return r.finish()
}

// preflight runs the verification gates: clean tree, no colliding tags, no
// downgrades, allowed branch, and a behind-remote warning.
func (r *Runner) preflight(ctx context.Context) (Outcome, bool) {
	dirty, err := r.git.IsDirty(ctx)
	if err != nil {
		return r.fatal(err)
	}
	if dirty {
		if o, abort := r.fail(OutcomeDirtyTree, "working tree has uncommitted changes"); abort {
			return o, true
		}
	}

	for _, p := range r.selected() {
		if p.PlannedTag == "" {
			continue
		}
		exists, err := r.git.TagExists(ctx, p.PlannedTag)
		if err != nil {
			return r.fatal(err)
		}
		if exists {
			if o, abort := r.fail(OutcomeTagExists, "tag %s already exists", p.PlannedTag); abort {
				return o, true
			}
		}
	}

	for _, p := range r.selected() {
		if p.PlannedVersion != nil && p.PlannedVersion.LessThan(p.PrevVersion) {
			if o, abort := r.fail(OutcomeDowngrade, "%s: %s -> %s is a downgrade",
				p.Name(), p.PrevVersion.FullString, p.PlannedVersion.FullString); abort {
				return o, true
			}
		}
	}

	branch, err := r.git.CurrentBranch(ctx)
	if err != nil {
		return r.fatal(err)
	}
	for _, p := range r.selected() {
		if !branchAllowed(branch, p.Config.AllowBranchPatterns()) {
			if o, abort := r.fail(OutcomeBranchNotAllowed,
				"%s: branch %s is not in the allow-list %v", p.Name(), branch, p.Config.AllowBranchPatterns()); abort {
				return o, true
			}
			break
		}
	}

	remote := r.pushRemote()
	if err := r.git.Fetch(ctx, remote); err != nil {
		r.log.Warn("could not fetch remote", "remote", remote, "err", err)
	} else {
		behind, err := r.git.IsBehindRemote(ctx, remote, branch)
		if err != nil {
			return r.fatal(err)
		}
		if behind {
			r.log.Warn("local branch is behind its remote", "branch", branch, "remote", remote)
		}
	}

	return OutcomeSuccess, false
}

// guardDoublePublish aborts when a planned version is already visible in
// the default registry, protecting against re-running a half-finished
// release with a stale plan. Cached index responses are fine here: version
// lists only grow, so a cached "published" answer stays authoritative, and
// the publish phase re-checks with a fresh query before uploading.
func (r *Runner) guardDoublePublish(ctx context.Context) (Outcome, bool) {
	for _, p := range r.selected() {
		if p.PlannedVersion == nil || !p.Config.PublishEnabled() || !p.Config.UsesDefaultRegistry() {
			continue
		}
		published, err := r.registry.IsPublished(ctx, p.Name(), p.PlannedVersion.FullString, false)
		if err != nil {
			return r.fatal(err)
		}
		if published {
			if o, abort := r.fail(OutcomeDoublePublish,
				"%s %s is already published", p.Name(), p.PlannedVersion.FullString); abort {
				return o, true
			}
		}
	}
	return OutcomeSuccess, false
}

// auditChanges warns about packages being released without any detected
// change since their previous tag. Advisory only; the release proceeds.
func (r *Runner) auditChanges(ctx context.Context) (Outcome, bool) {
	for _, p := range r.selected() {
		if p.PlannedVersion == nil || p.PrevTag == "" {
			continue
		}
		changed, err := r.git.ChangedFiles(ctx, p.PrevTag)
		if err != nil {
			return r.fatal(err)
		}
		if changed == nil {
			r.log.Debug("previous tag not found, skipping change audit", "package", p.Name(), "tag", p.PrevTag)
			continue
		}
		if r.hasReasonToRelease(p, changed) {
			continue
		}
		r.log.Warn("releasing despite no detected changes", "package", p.Name(), "since", p.PrevTag)
	}
	return OutcomeSuccess, false
}

func (r *Runner) hasReasonToRelease(p *plan.PackageRelease, changed []string) bool {
	own := make(map[string]bool, len(p.Content))
	for _, f := range p.Content {
		own[f] = true
	}

	deps := make(map[string]bool)
	for _, d := range p.Member.Dependencies {
		if _, ok := r.ws.Member(d.Name); ok {
			deps[d.Name] = true
		}
	}

	for _, rel := range changed {
		abs := filepath.Join(r.ws.Root, rel)
		if own[abs] {
			return true
		}
		if abs == r.ws.LockPath && p.Member.IsBinary && !p.Config.DevVersionEnabled() {
			return true
		}
		// A change inside a workspace dependency forces this package along.
		for _, other := range r.pkgs {
			if deps[other.Name()] && strings.HasPrefix(abs, other.Member.Root+string(filepath.Separator)) {
				return true
			}
		}
	}
	return false
}

// confirmPlan shows the version changes and asks for approval. Skipped in
// dry-run and with --no-confirm. Declining is a clean abort.
func (r *Runner) confirmPlan(ctx context.Context) (Outcome, bool) {
	if !r.opts.Execute || r.opts.NoConfirm {
		return OutcomeSuccess, false
	}

	var lines []string
	for _, p := range r.selected() {
		if p.PlannedVersion != nil {
			lines = append(lines, fmt.Sprintf("  %s: %s -> %s",
				p.Name(), p.PrevVersion.FullString, p.PlannedVersion.FullString))
		}
	}
	if len(lines) == 0 {
		return OutcomeSuccess, false
	}

	prompt := fmt.Sprintf("Release the following?\n%s\n", strings.Join(lines, "\n"))
	if !r.confirm.Confirm(prompt) {
		r.declined = true
	}
	return OutcomeSuccess, false
}

// applyVersions writes planned versions into manifests, propagates
// dependent requirements, refreshes the lock, runs replacements and the
// pre-release hook, and commits. withAncillary=false (the version-only
// step) stops after the manifest and dependent updates.
func (r *Runner) applyVersions(ctx context.Context, withAncillary bool) (Outcome, bool) {
	var consolidated []*plan.PackageRelease

	for _, p := range r.selected() {
		if p.PlannedVersion == nil {
			continue
		}
		version := p.PlannedVersion

		r.describe("set %s version to %s", p.Name(), version.FullString)
		if r.opts.Execute {
			if err := r.manifests.SetPackageVersion(p.Member.ManifestPath, version.FullString); err != nil {
				return r.fatal(err)
			}
		}

		if o, abort := r.propagateDependents(p, version); abort {
			return o, true
		}

		if !withAncillary {
			continue
		}

		if r.opts.Execute {
			if err := r.manifests.UpdateLock(ctx, r.ws.Root); err != nil {
				return r.fatal(err)
			}
		}

		rules := replace.Filter(p.Config.PreReleaseReplacements, version.IsPrerelease())
		if len(rules) > 0 {
			reports, err := replace.Apply(p.Member.Root, rules, p.Template(r.opts.Date), !r.opts.Execute)
			if err != nil {
				return r.fatal(err)
			}
			for _, rep := range reports {
				r.describe("replace %q in %s (%d matches)", rep.Search, rep.File, rep.Matches)
			}
		}

		if len(p.Config.PreReleaseHook) > 0 {
			if err := r.hooks.Run(ctx, p.Member.Root, r.hookEnv(p, version), p.Config.PreReleaseHook...); err != nil {
				if o, abort := r.fail(OutcomeHookFailed, "%s: pre-release hook failed: %v", p.Name(), err); abort {
					return o, true
				}
			}
		}

		if p.Config.ConsolidateCommits() {
			consolidated = append(consolidated, p)
			continue
		}
		tpl := p.Template(r.opts.Date)
		message := tpl.Render(p.Config.PreReleaseMessageTemplate())
		r.describe("commit %s: %s", p.Name(), message)
		if r.opts.Execute {
			if err := r.git.CommitAll(ctx, message, p.Config.SignCommitEnabled()); err != nil {
				if o, abort := r.fail(OutcomeCommitFailed, "%s: commit failed: %v", p.Name(), err); abort {
					return o, true
				}
			}
		}
	}

	if len(consolidated) > 0 {
		if o, abort := r.commitConsolidated(ctx, consolidated, false); abort {
			return o, true
		}
	}
	return OutcomeSuccess, false
}

// propagateDependents rewrites other members' requirements on p per its
// dependent-version policy.
func (r *Runner) propagateDependents(p *plan.PackageRelease, version *semver.Version) (Outcome, bool) {
	policy := p.Config.DependentVersionPolicy()
	if policy == config.DependentIgnore {
		return OutcomeSuccess, false
	}

	for _, dep := range p.Dependents {
		matches, err := semver.RequirementMatches(dep.Requirement, version.Full)
		if err != nil {
			return r.fatal(err)
		}

		switch policy {
		case config.DependentWarn:
			if !matches {
				r.log.Warn("dependent requirement no longer matches",
					"package", p.Name(), "dependent", dep.Member.Name, "requirement", dep.Requirement)
			}
			continue
		case config.DependentError:
			if !matches {
				if o, abort := r.fail(OutcomeDependentMismatch,
					"%s requires %s %q, incompatible with %s",
					dep.Member.Name, p.Name(), dep.Requirement, version.FullString); abort {
					return o, true
				}
			}
			continue
		case config.DependentFix:
			if matches {
				continue
			}
		case config.DependentUpgrade:
			// always rewrite
		}

		updated, changed, err := semver.SetRequirement(dep.Requirement, version.Full)
		if err != nil {
			return r.fatal(err)
		}
		if !changed {
			continue
		}
		r.describe("update %s requirement on %s to %q", dep.Member.Name, p.Name(), updated)
		if r.opts.Execute {
			if err := r.manifests.SetDependencyVersion(dep.Member.ManifestPath, p.Name(), updated); err != nil {
				return r.fatal(err)
			}
		}
	}
	return OutcomeSuccess, false
}

// publish uploads each publishing package and waits until the registry
// shows the new version. Already-visible versions are skipped, which makes
// re-running an interrupted release safe.
func (r *Runner) publish(ctx context.Context) (Outcome, bool) {
	for _, p := range r.selected() {
		if p.PlannedVersion == nil || !p.Config.PublishEnabled() {
			continue
		}
		version := p.PlannedVersion.FullString

		if p.Config.UsesDefaultRegistry() {
			published, err := r.registry.IsPublished(ctx, p.Name(), version, true)
			if err != nil {
				return r.fatal(err)
			}
			if published {
				r.log.Warn("already published, skipping", "package", p.Name(), "version", version)
				continue
			}
		}

		r.describe("publish %s %s", p.Name(), version)
		if !r.opts.Execute {
			continue
		}

		opts := cargo.PublishOptions{
			Verify:   p.Config.VerifyEnabled() && !r.dependsOnReleasedMember(p),
			Target:   stringValue(p.Config.Target),
			Features: p.Config.Features,
		}
		if !p.Config.UsesDefaultRegistry() {
			opts.Registry = p.Config.RegistryName()
		}
		if err := r.manifests.Publish(ctx, p.Member.Root, opts); err != nil {
			if o, abort := r.fail(OutcomePublishFailed, "%s: publish failed: %v", p.Name(), err); abort {
				return o, true
			}
			continue
		}

		if p.Config.UsesDefaultRegistry() {
			if err := r.registry.WaitForPublish(ctx, p.Name(), version, r.opts.PublishTimeout); err != nil {
				if errors.Is(err, errors.ErrCodeTimeout) {
					return OutcomePublishTimeout, true
				}
				return r.fatal(err)
			}
		}
	}
	return OutcomeSuccess, false
}

// dependsOnReleasedMember reports whether p has a non-dev dependency on
// another package released in this run. Verification builds would resolve
// that dependency against the registry before the index settles, so verify
// is skipped for such packages.
func (r *Runner) dependsOnReleasedMember(p *plan.PackageRelease) bool {
	released := make(map[string]bool)
	for _, other := range r.selected() {
		if other.PlannedVersion != nil && other != p {
			released[other.Name()] = true
		}
	}
	for _, d := range p.Member.Dependencies {
		if d.Kind != workspace.KindDev && released[d.Name] {
			return true
		}
	}
	return false
}

// tag creates each distinct planned tag exactly once. Shared-version
// groups may plan the same tag for several packages.
func (r *Runner) tag(ctx context.Context) (Outcome, bool) {
	seen := make(map[string]bool)
	for _, p := range r.selected() {
		if p.PlannedTag == "" || seen[p.PlannedTag] {
			continue
		}
		seen[p.PlannedTag] = true

		exists, err := r.git.TagExists(ctx, p.PlannedTag)
		if err != nil {
			return r.fatal(err)
		}
		if exists {
			r.log.Warn("tag already exists, skipping", "tag", p.PlannedTag)
			continue
		}

		tpl := p.Template(r.opts.Date)
		message := tpl.Render(p.Config.TagMessageTemplate())
		r.describe("tag %s: %s", p.PlannedTag, message)
		if r.opts.Execute {
			if err := r.git.Tag(ctx, p.PlannedTag, message, p.Config.SignTagEnabled()); err != nil {
				if o, abort := r.fail(OutcomeTagFailed, "tag %s failed: %v", p.PlannedTag, err); abort {
					return o, true
				}
				continue
			}
		}
		r.createdTags = append(r.createdTags, p.PlannedTag)
	}
	return OutcomeSuccess, false
}

// postRelease applies the next development version: manifest write,
// dependent propagation, lock refresh, post-release replacements, commit.
func (r *Runner) postRelease(ctx context.Context) (Outcome, bool) {
	var consolidated []*plan.PackageRelease

	for _, p := range r.selected() {
		if p.PlannedPostVersion == nil {
			continue
		}
		next := p.PlannedPostVersion

		r.describe("bump %s to development version %s", p.Name(), next.FullString)
		if r.opts.Execute {
			if err := r.manifests.SetPackageVersion(p.Member.ManifestPath, next.FullString); err != nil {
				return r.fatal(err)
			}
		}

		if o, abort := r.propagateDependents(p, next); abort {
			return o, true
		}

		if r.opts.Execute {
			if err := r.manifests.UpdateLock(ctx, r.ws.Root); err != nil {
				return r.fatal(err)
			}
		}

		// Post-release replacements always apply, regardless of pre-release
		// state.
		if len(p.Config.PostReleaseReplacements) > 0 {
			reports, err := replace.Apply(p.Member.Root, p.Config.PostReleaseReplacements,
				p.Template(r.opts.Date), !r.opts.Execute)
			if err != nil {
				return r.fatal(err)
			}
			for _, rep := range reports {
				r.describe("replace %q in %s (%d matches)", rep.Search, rep.File, rep.Matches)
			}
		}

		if p.Config.ConsolidateCommits() {
			consolidated = append(consolidated, p)
			continue
		}
		tpl := p.Template(r.opts.Date)
		message := tpl.Render(p.Config.PostReleaseMessageTemplate())
		r.describe("commit %s: %s", p.Name(), message)
		if r.opts.Execute {
			if err := r.git.CommitAll(ctx, message, p.Config.SignCommitEnabled()); err != nil {
				if o, abort := r.fail(OutcomePostCommitFailed, "%s: post-release commit failed: %v", p.Name(), err); abort {
					return o, true
				}
			}
		}
	}

	if len(consolidated) > 0 {
		if o, abort := r.commitConsolidated(ctx, consolidated, true); abort {
			return o, true
		}
	}
	return OutcomeSuccess, false
}

// push sends the branch and created tags to the remote. Consolidating
// packages share one push; the rest push individually.
func (r *Runner) push(ctx context.Context) (Outcome, bool) {
	branch, err := r.git.CurrentBranch(ctx)
	if err != nil {
		return r.fatal(err)
	}

	tagsFor := func(p *plan.PackageRelease) []string {
		var refs []string
		for _, t := range r.createdTags {
			if t == p.PlannedTag {
				refs = append(refs, t)
			}
		}
		return refs
	}

	var sharedRefs []string
	sharedSeen := map[string]bool{}
	pushShared := false

	for _, p := range r.selected() {
		if !p.Config.PushEnabled() {
			continue
		}
		if p.PlannedVersion == nil && len(tagsFor(p)) == 0 {
			continue
		}
		if p.Config.ConsolidatePushes() {
			pushShared = true
			for _, ref := range append([]string{branch}, tagsFor(p)...) {
				if !sharedSeen[ref] {
					sharedSeen[ref] = true
					sharedRefs = append(sharedRefs, ref)
				}
			}
			continue
		}

		refs := append([]string{branch}, tagsFor(p)...)
		r.describe("push %v to %s", refs, p.Config.PushRemoteName())
		if r.opts.Execute {
			if err := r.git.Push(ctx, p.Config.PushRemoteName(), refs, p.Config.PushOptions); err != nil {
				if o, abort := r.fail(OutcomePushFailed, "%s: push failed: %v", p.Name(), err); abort {
					return o, true
				}
			}
		}
	}

	if pushShared {
		r.describe("push %v to %s (consolidated)", sharedRefs, r.pushRemote())
		if r.opts.Execute {
			if err := r.git.Push(ctx, r.pushRemote(), sharedRefs, nil); err != nil {
				if o, abort := r.fail(OutcomePushFailed, "consolidated push failed: %v", err); abort {
					return o, true
				}
			}
		}
	}
	return OutcomeSuccess, false
}

// applyReplacements is the standalone replace step.
func (r *Runner) applyReplacements() (Outcome, bool) {
	for _, p := range r.selected() {
		if p.PlannedVersion == nil {
			continue
		}
		rules := replace.Filter(p.Config.PreReleaseReplacements, p.PlannedVersion.IsPrerelease())
		if len(rules) == 0 {
			continue
		}
		reports, err := replace.Apply(p.Member.Root, rules, p.Template(r.opts.Date), !r.opts.Execute)
		if err != nil {
			return r.fatal(err)
		}
		for _, rep := range reports {
			r.describe("replace %q in %s (%d matches)", rep.Search, rep.File, rep.Matches)
		}
	}
	return OutcomeSuccess, false
}

// commitAll is the standalone commit step: one workspace-wide commit.
func (r *Runner) commitAll(ctx context.Context) (Outcome, bool) {
	var with []*plan.PackageRelease
	for _, p := range r.selected() {
		if p.PlannedVersion != nil {
			with = append(with, p)
		}
	}
	if len(with) == 0 {
		return OutcomeSuccess, false
	}
	return r.commitConsolidated(ctx, with, false)
}

func (r *Runner) commitConsolidated(ctx context.Context, pkgs []*plan.PackageRelease, post bool) (Outcome, bool) {
	var lines []string
	sign := false
	for _, p := range pkgs {
		tpl := p.Template(r.opts.Date)
		if post {
			lines = append(lines, tpl.Render(p.Config.PostReleaseMessageTemplate()))
		} else {
			lines = append(lines, tpl.Render(p.Config.PreReleaseMessageTemplate()))
		}
		sign = sign || p.Config.SignCommitEnabled()
	}
	message := strings.Join(dedupe(lines), "\n")

	r.describe("commit (consolidated): %s", message)
	if r.opts.Execute {
		if err := r.git.CommitAll(ctx, message, sign); err != nil {
			outcome := OutcomeCommitFailed
			if post {
				outcome = OutcomePostCommitFailed
			}
			if o, abort := r.fail(outcome, "consolidated commit failed: %v", err); abort {
				return o, true
			}
		}
	}
	return OutcomeSuccess, false
}

// hookEnv builds the environment passed to pre-release hooks.
func (r *Runner) hookEnv(p *plan.PackageRelease, version *semver.Version) map[string]string {
	dryRun := "true"
	if r.opts.Execute {
		dryRun = "false"
	}
	return map[string]string{
		"PREV_VERSION":   p.PrevVersion.BareString,
		"PREV_METADATA":  p.PrevVersion.Full.Metadata(),
		"NEW_VERSION":    version.BareString,
		"NEW_METADATA":   version.Full.Metadata(),
		"DRY_RUN":        dryRun,
		"CRATE_NAME":     p.Name(),
		"WORKSPACE_ROOT": r.ws.Root,
		"CRATE_ROOT":     p.Member.Root,
	}
}

// pushRemote returns the remote of the first selected package; preflight
// and the consolidated push operate workspace-wide.
func (r *Runner) pushRemote() string {
	for _, p := range r.selected() {
		return p.Config.PushRemoteName()
	}
	return config.DefaultPushRemote
}

func (r *Runner) fatal(err error) (Outcome, bool) {
	r.log.Error("fatal error", "err", err)
	return OutcomeFatal, true
}

// describe logs an action: as a would-do in dry-run, as a doing in
// execute mode.
func (r *Runner) describe(format string, args ...any) {
	if r.opts.Execute {
		r.log.Info(fmt.Sprintf(format, args...))
	} else {
		r.log.Info("dry-run: would " + fmt.Sprintf(format, args...))
	}
}

func branchAllowed(branch string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, branch); err == nil && ok {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func stringValue(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}
