// Package plan builds the per-package release plan: previous version and
// tag, candidate next version, shared-version reconciliation across the
// workspace, and the derived tag and post-release development version.
package plan

import (
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/towline/pkg/config"
	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/semver"
	"github.com/matzehuels/towline/pkg/template"
	"github.com/matzehuels/towline/pkg/workspace"
)

// PackageRelease is the planning unit for one releasable workspace member.
//
// Lifecycle: Load constructs it with the previous version and tag; Bump
// sets PlannedVersion; PlanShared may overwrite PlannedVersion to satisfy a
// shared-version group; Finish then derives PlannedTag and
// PlannedPostVersion from the final PlannedVersion. Exclusion is final for
// the run.
type PackageRelease struct {
	Member     *workspace.Member
	Config     config.Config
	Content    []string
	Dependents []workspace.Dependent

	PrevVersion *semver.Version
	PrevTag     string

	PlannedVersion     *semver.Version
	PlannedTag         string
	PlannedPostVersion *semver.Version
	Selected           bool
}

// Name returns the package name.
func (p *PackageRelease) Name() string { return p.Member.Name }

// Version returns the version the package will carry after this run: the
// planned version when bumped, otherwise the previous version.
func (p *PackageRelease) Version() *semver.Version {
	if p.PlannedVersion != nil {
		return p.PlannedVersion
	}
	return p.PrevVersion
}

// baseTemplate carries the fields shared by every render for this package.
func (p *PackageRelease) baseTemplate(date string) template.Template {
	tpl := template.Template{
		CrateName:   template.Set(p.Member.Name),
		Date:        template.Set(date),
		PrevVersion: template.Set(p.PrevVersion.FullString),
	}
	if meta := p.PrevVersion.Full.Metadata(); meta != "" {
		tpl.PrevMetadata = template.Set(meta)
	}
	return tpl
}

// Template returns the fully-populated render context for the package,
// including planned and post-release versions where present.
func (p *PackageRelease) Template(date string) template.Template {
	tpl := p.baseTemplate(date)
	v := p.Version()
	tpl.Version = template.Set(v.FullString)
	if meta := v.Full.Metadata(); meta != "" {
		tpl.Metadata = template.Set(meta)
	}
	prefix := tpl.Render(p.Config.TagPrefixTemplate(p.Member.IsRoot))
	tpl.Prefix = template.Set(prefix)
	if p.PlannedTag != "" {
		tpl.TagName = template.Set(p.PlannedTag)
	}
	if p.PlannedPostVersion != nil {
		tpl.NextVersion = template.Set(p.PlannedPostVersion.FullString)
		if meta := p.PlannedPostVersion.Full.Metadata(); meta != "" {
			tpl.NextMetadata = template.Set(meta)
		}
	}
	return tpl
}

// Options control plan construction.
type Options struct {
	// Date is the run's shared calendar date (YYYY-MM-DD), computed once by
	// the caller.
	Date string
	// PrevTagName overrides the rendered previous tag for every package,
	// for repositories whose historical tags predate the configured scheme.
	PrevTagName string
}

// Load builds one PackageRelease per releasable member, in publish order.
// Members whose merged config disables release never enter the plan.
func Load(ws *workspace.Workspace, resolver *config.Resolver, opts Options) ([]*PackageRelease, error) {
	var pkgs []*PackageRelease
	for _, m := range workspace.SortMembers(ws) {
		cfg, err := resolver.For(m)
		if err != nil {
			return nil, err
		}
		if !cfg.ReleaseEnabled() {
			continue
		}

		prev, err := semver.Parse(m.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err,
				"package %s has an invalid version", m.Name)
		}

		content, err := ws.PackageContent(m)
		if err != nil {
			return nil, err
		}

		p := &PackageRelease{
			Member:      m,
			Config:      cfg,
			Content:     content,
			Dependents:  ws.Dependents(m.Name),
			PrevVersion: prev,
			Selected:    true,
		}

		if opts.PrevTagName != "" {
			p.PrevTag = opts.PrevTagName
		} else {
			tpl := p.baseTemplate(opts.Date)
			tpl.Version = template.Set(prev.FullString)
			prefix := tpl.Render(cfg.TagPrefixTemplate(m.IsRoot))
			tpl.Prefix = template.Set(prefix)
			p.PrevTag = tpl.Render(cfg.TagNameTemplate())
		}

		pkgs = append(pkgs, p)
	}
	if len(pkgs) == 0 {
		return nil, errors.New(errors.ErrCodePackageNotFound, "no releasable packages in workspace")
	}
	return pkgs, nil
}

// Bump resolves the target against the previous version and records the
// planned version. A target that needs no change leaves PlannedVersion nil.
func (p *PackageRelease) Bump(target semver.Target, metadata string) error {
	next, err := target.Resolve(p.PrevVersion, metadata)
	if err != nil {
		return err
	}
	p.PlannedVersion = next
	return nil
}

// ChangeLister is the slice of the version-control collaborator exclusion
// reporting needs.
type ChangeLister interface {
	ChangedFiles(sinceRef string) ([]string, error)
}

// OwnedChanges filters repo-relative changed paths down to those belonging
// to this package, preserving order. The workspace lock file is attributed
// only to binary-producing packages, and not while dev-version bumping is
// active, since the dev bump itself rewrites the lock.
func (p *PackageRelease) OwnedChanges(changed []string, root, lockPath string) []string {
	own := make(map[string]bool, len(p.Content))
	for _, f := range p.Content {
		own[f] = true
	}

	var out []string
	for _, f := range changed {
		abs := filepath.Join(root, f)
		switch {
		case own[abs]:
			out = append(out, f)
		case abs == lockPath && p.Member.IsBinary && !p.Config.DevVersionEnabled():
			out = append(out, f)
		}
	}
	return out
}

// Exclude force-removes the named packages from the run: planned versions
// are cleared and the package is marked unselected. For operator
// visibility it logs whether each excluded package actually had releasable
// changes since its previous tag.
func Exclude(logger *log.Logger, pkgs []*PackageRelease, names []string, git ChangeLister, root, lockPath string) {
	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}

	for _, p := range pkgs {
		if !excluded[p.Name()] {
			continue
		}
		p.PlannedVersion = nil
		p.Selected = false

		changed, err := git.ChangedFiles(p.PrevTag)
		if err != nil || changed == nil {
			logger.Debug("excluded package has unknown history", "package", p.Name(), "prev_tag", p.PrevTag)
			continue
		}

		if len(p.OwnedChanges(changed, root, lockPath)) > 0 {
			logger.Warn("excluding package that has changes since its last release",
				"package", p.Name(), "prev_tag", p.PrevTag)
		} else {
			logger.Info("excluded package has no changes since its last release",
				"package", p.Name(), "prev_tag", p.PrevTag)
		}
	}
}

// PlanShared reconciles shared-version groups: every selected package
// carrying the same label is re-stamped to the group's maximum bare
// version. Reconciliation never lowers a version. It must run before
// Finish, because tags and post-release versions derive from the final
// planned version.
//
// An unselected package whose label-mates move past it cannot be
// re-stamped; that deviation is an error.
func PlanShared(pkgs []*PackageRelease) error {
	groups := make(map[string][]*PackageRelease)
	for _, p := range pkgs {
		if label := p.Config.SharedVersionLabel(); label != "" {
			groups[label] = append(groups[label], p)
		}
	}

	for label, group := range groups {
		var highest *semver.Version
		for _, p := range group {
			v := p.Version()
			if highest == nil || highest.Bare.LessThan(v.Bare) {
				highest = v
			}
		}

		for _, p := range group {
			if p.Version().BareEqual(highest) {
				continue
			}
			if !p.Selected {
				return errors.New(errors.ErrCodeInvalidConfig,
					"shared-version group %q: excluded package %s is at %s while the group moves to %s",
					label, p.Name(), p.Version().BareString, highest.BareString)
			}
			p.PlannedVersion = highest
		}
	}
	return nil
}

// Finish derives each selected package's tag name and post-release
// development version from its final planned version. Packages without a
// planned version are not being released and get neither.
func Finish(pkgs []*PackageRelease, date string) error {
	for _, p := range pkgs {
		if !p.Selected || p.PlannedVersion == nil {
			continue
		}
		base := p.PlannedVersion

		if p.Config.TagEnabled() {
			tpl := p.baseTemplate(date)
			tpl.Version = template.Set(base.FullString)
			if meta := base.Full.Metadata(); meta != "" {
				tpl.Metadata = template.Set(meta)
			}
			prefix := tpl.Render(p.Config.TagPrefixTemplate(p.Member.IsRoot))
			tpl.Prefix = template.Set(prefix)
			p.PlannedTag = tpl.Render(p.Config.TagNameTemplate())
		}

		if p.Config.DevVersionEnabled() && !base.IsPrerelease() {
			next := base.Full.IncPatch()
			next, err := next.SetPrerelease(p.Config.DevVersionExtension())
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPrerelease, err,
					"invalid dev-version extension %q for %s", p.Config.DevVersionExtension(), p.Name())
			}
			p.PlannedPostVersion = semver.New(&next)
		}
	}
	return nil
}
