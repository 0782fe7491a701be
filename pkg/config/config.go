// Package config resolves release configuration for workspace members.
//
// Configuration is layered: built-in defaults, the user-global file, the
// workspace manifest and release.toml, the member manifest and
// release.toml, an optional custom file, and finally command-line
// overrides. Every field of Config is optional so each layer only states
// what it sets; Merge folds layers together with later layers winning.
package config

import (
	"fmt"
	"strings"

	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/replace"
)

// DependentVersion is the policy applied to other workspace members'
// requirements on a package being released.
type DependentVersion int

const (
	// DependentIgnore leaves dependent requirements alone.
	DependentIgnore DependentVersion = iota
	// DependentWarn logs dependents whose requirement no longer matches.
	DependentWarn
	// DependentError aborts the run when a requirement no longer matches.
	DependentError
	// DependentFix rewrites only requirements that no longer match.
	DependentFix
	// DependentUpgrade rewrites every dependent requirement.
	DependentUpgrade
)

var dependentNames = map[string]DependentVersion{
	"ignore":  DependentIgnore,
	"warn":    DependentWarn,
	"error":   DependentError,
	"fix":     DependentFix,
	"upgrade": DependentUpgrade,
}

// ParseDependentVersion converts a policy name to its value.
func ParseDependentVersion(name string) (DependentVersion, error) {
	if v, ok := dependentNames[strings.ToLower(name)]; ok {
		return v, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown dependent-version policy %q", name)
}

func (d DependentVersion) String() string {
	for name, v := range dependentNames {
		if v == d {
			return name
		}
	}
	return fmt.Sprintf("DependentVersion(%d)", int(d))
}

// UnmarshalTOML accepts the policy by name in configuration files.
func (d *DependentVersion) UnmarshalTOML(data any) error {
	s, ok := data.(string)
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "dependent-version must be a string")
	}
	v, err := ParseDependentVersion(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Config is one layer of release configuration. All fields are optional;
// nil means "this layer does not say".
type Config struct {
	Release         *bool `toml:"release"`
	Publish         *bool `toml:"publish"`
	Verify          *bool `toml:"verify"`
	Tag             *bool `toml:"tag"`
	Push            *bool `toml:"push"`
	SignCommit      *bool `toml:"sign-commit"`
	SignTag         *bool `toml:"sign-tag"`
	Consolidate     *bool `toml:"consolidate-commits"`
	ConsolidatePush *bool `toml:"consolidate-pushes"`
	DevVersion      *bool `toml:"dev-version"`

	SharedVersion    *string           `toml:"shared-version"`
	DependentVersion *DependentVersion `toml:"dependent-version"`

	TagPrefix      *string `toml:"tag-prefix"`
	TagName        *string `toml:"tag-name"`
	TagMessage     *string `toml:"tag-message"`
	PreRelMessage  *string `toml:"pre-release-commit-message"`
	PostRelMessage *string `toml:"post-release-commit-message"`
	DevVersionExt  *string `toml:"dev-version-ext"`

	PushRemote  *string  `toml:"push-remote"`
	PushOptions []string `toml:"push-options"`
	AllowBranch []string `toml:"allow-branch"`

	Registry *string  `toml:"registry"`
	Target   *string  `toml:"target"`
	Features []string `toml:"enable-features"`

	PreReleaseHook []string `toml:"pre-release-hook"`

	PreReleaseReplacements  []replace.Rule `toml:"pre-release-replacements"`
	PostReleaseReplacements []replace.Rule `toml:"post-release-replacements"`
}

// Merge overlays o onto c: any field o sets replaces c's value. Neither
// receiver nor argument is mutated.
func (c Config) Merge(o Config) Config {
	out := c
	if o.Release != nil {
		out.Release = o.Release
	}
	if o.Publish != nil {
		out.Publish = o.Publish
	}
	if o.Verify != nil {
		out.Verify = o.Verify
	}
	if o.Tag != nil {
		out.Tag = o.Tag
	}
	if o.Push != nil {
		out.Push = o.Push
	}
	if o.SignCommit != nil {
		out.SignCommit = o.SignCommit
	}
	if o.SignTag != nil {
		out.SignTag = o.SignTag
	}
	if o.Consolidate != nil {
		out.Consolidate = o.Consolidate
	}
	if o.ConsolidatePush != nil {
		out.ConsolidatePush = o.ConsolidatePush
	}
	if o.DevVersion != nil {
		out.DevVersion = o.DevVersion
	}
	if o.SharedVersion != nil {
		out.SharedVersion = o.SharedVersion
	}
	if o.DependentVersion != nil {
		out.DependentVersion = o.DependentVersion
	}
	if o.TagPrefix != nil {
		out.TagPrefix = o.TagPrefix
	}
	if o.TagName != nil {
		out.TagName = o.TagName
	}
	if o.TagMessage != nil {
		out.TagMessage = o.TagMessage
	}
	if o.PreRelMessage != nil {
		out.PreRelMessage = o.PreRelMessage
	}
	if o.PostRelMessage != nil {
		out.PostRelMessage = o.PostRelMessage
	}
	if o.DevVersionExt != nil {
		out.DevVersionExt = o.DevVersionExt
	}
	if o.PushRemote != nil {
		out.PushRemote = o.PushRemote
	}
	if o.PushOptions != nil {
		out.PushOptions = o.PushOptions
	}
	if o.AllowBranch != nil {
		out.AllowBranch = o.AllowBranch
	}
	if o.Registry != nil {
		out.Registry = o.Registry
	}
	if o.Target != nil {
		out.Target = o.Target
	}
	if o.Features != nil {
		out.Features = o.Features
	}
	if o.PreReleaseHook != nil {
		out.PreReleaseHook = o.PreReleaseHook
	}
	if o.PreReleaseReplacements != nil {
		out.PreReleaseReplacements = o.PreReleaseReplacements
	}
	if o.PostReleaseReplacements != nil {
		out.PostReleaseReplacements = o.PostReleaseReplacements
	}
	return out
}

// Built-in defaults, applied by the accessors below.
const (
	DefaultTagName        = "{{prefix}}v{{version}}"
	DefaultNonRootPrefix  = "{{crate_name}}-"
	DefaultTagMessage     = "(towline) {{crate_name}} version {{version}}"
	DefaultPreRelMessage  = "(towline) version {{version}}"
	DefaultPostRelMessage = "(towline) start next development iteration {{next_version}}"
	DefaultDevVersionExt  = "alpha.0"
	DefaultPushRemote     = "origin"
	DefaultRegistry       = "crates-io"
)

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

func stringOr(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}

// ReleaseEnabled reports whether the package participates in releases.
func (c Config) ReleaseEnabled() bool { return boolOr(c.Release, true) }

// PublishEnabled reports whether the package is published to a registry.
func (c Config) PublishEnabled() bool { return boolOr(c.Publish, true) }

// VerifyEnabled reports whether publish runs with verification builds.
func (c Config) VerifyEnabled() bool { return boolOr(c.Verify, true) }

// TagEnabled reports whether a release tag is created.
func (c Config) TagEnabled() bool { return boolOr(c.Tag, true) }

// PushEnabled reports whether the branch and tags are pushed.
func (c Config) PushEnabled() bool { return boolOr(c.Push, true) }

// SignCommitEnabled reports whether commits are GPG-signed.
func (c Config) SignCommitEnabled() bool { return boolOr(c.SignCommit, false) }

// SignTagEnabled reports whether tags are GPG-signed.
func (c Config) SignTagEnabled() bool { return boolOr(c.SignTag, false) }

// ConsolidateCommits reports whether the package defers its commits into
// the shared workspace commit.
func (c Config) ConsolidateCommits() bool { return boolOr(c.Consolidate, false) }

// ConsolidatePushes reports whether the package contributes its refs to the
// shared workspace push.
func (c Config) ConsolidatePushes() bool { return boolOr(c.ConsolidatePush, false) }

// DevVersionEnabled reports whether a post-release development version is
// applied after tagging.
func (c Config) DevVersionEnabled() bool { return boolOr(c.DevVersion, false) }

// SharedVersionLabel returns the shared-version group label, empty when the
// package is not in a group.
func (c Config) SharedVersionLabel() string { return stringOr(c.SharedVersion, "") }

// DependentVersionPolicy returns the dependent-requirement policy,
// defaulting to rewriting requirements that no longer match.
func (c Config) DependentVersionPolicy() DependentVersion {
	if c.DependentVersion != nil {
		return *c.DependentVersion
	}
	return DependentFix
}

// TagPrefixTemplate returns the tag prefix template. Packages at the
// workspace root default to no prefix; nested members are prefixed with
// their crate name.
func (c Config) TagPrefixTemplate(isRoot bool) string {
	if c.TagPrefix != nil {
		return *c.TagPrefix
	}
	if isRoot {
		return ""
	}
	return DefaultNonRootPrefix
}

// TagNameTemplate returns the tag name template.
func (c Config) TagNameTemplate() string { return stringOr(c.TagName, DefaultTagName) }

// TagMessageTemplate returns the annotated-tag message template.
func (c Config) TagMessageTemplate() string { return stringOr(c.TagMessage, DefaultTagMessage) }

// PreReleaseMessageTemplate returns the release commit message template.
func (c Config) PreReleaseMessageTemplate() string {
	return stringOr(c.PreRelMessage, DefaultPreRelMessage)
}

// PostReleaseMessageTemplate returns the post-release commit message
// template.
func (c Config) PostReleaseMessageTemplate() string {
	return stringOr(c.PostRelMessage, DefaultPostRelMessage)
}

// DevVersionExtension returns the pre-release identifier attached to the
// post-release development version.
func (c Config) DevVersionExtension() string {
	return stringOr(c.DevVersionExt, DefaultDevVersionExt)
}

// PushRemoteName returns the git remote pushed to.
func (c Config) PushRemoteName() string { return stringOr(c.PushRemote, DefaultPushRemote) }

// AllowBranchPatterns returns the branch allow-list glob patterns.
func (c Config) AllowBranchPatterns() []string {
	if c.AllowBranch != nil {
		return c.AllowBranch
	}
	return []string{"*"}
}

// RegistryName returns the publish registry.
func (c Config) RegistryName() string { return stringOr(c.Registry, DefaultRegistry) }

// UsesDefaultRegistry reports whether the package publishes to the default
// registry; the double-publish guard and publish polling only apply there.
func (c Config) UsesDefaultRegistry() bool { return c.RegistryName() == DefaultRegistry }
