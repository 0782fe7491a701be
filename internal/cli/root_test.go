package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/towline/pkg/config"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")

	if version != "1.0.0" {
		t.Errorf("version = %q, want %q", version, "1.0.0")
	}
	if commit != "abc123" {
		t.Errorf("commit = %q, want %q", commit, "abc123")
	}
	if date != "2024-01-01" {
		t.Errorf("date = %q, want %q", date, "2024-01-01")
	}
}

func parseReleaseFlags(t *testing.T, args ...string) (*cobra.Command, *releaseOpts) {
	t.Helper()
	opts := &releaseOpts{workspaceRoot: "."}
	cmd := &cobra.Command{Use: "release"}
	cmd.Flags().BoolVar(&opts.noPublish, "no-publish", false, "")
	cmd.Flags().BoolVar(&opts.noPush, "no-push", false, "")
	cmd.Flags().BoolVar(&opts.noTag, "no-tag", false, "")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "")
	cmd.Flags().BoolVar(&opts.sign, "sign", false, "")
	cmd.Flags().BoolVar(&opts.devVersion, "dev-version", false, "")
	cmd.Flags().StringArrayVar(&opts.allowBranch, "allow-branch", nil, "")
	cmd.Flags().StringVar(&opts.dependentVersion, "dependent-version", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd, opts
}

func TestOverrides_UnsetFlagsContributeNothing(t *testing.T) {
	cmd, opts := parseReleaseFlags(t)
	cfg, err := opts.overrides(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Publish != nil || cfg.Push != nil || cfg.Tag != nil || cfg.Verify != nil ||
		cfg.SignCommit != nil || cfg.DevVersion != nil || cfg.AllowBranch != nil ||
		cfg.DependentVersion != nil {
		t.Errorf("overrides() = %+v, want empty layer", cfg)
	}
}

func TestOverrides_NegatedFlags(t *testing.T) {
	cmd, opts := parseReleaseFlags(t, "--no-publish", "--no-tag", "--sign", "--dependent-version", "upgrade")
	cfg, err := opts.overrides(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Publish == nil || *cfg.Publish {
		t.Errorf("Publish = %v, want false", cfg.Publish)
	}
	if cfg.Tag == nil || *cfg.Tag {
		t.Errorf("Tag = %v, want false", cfg.Tag)
	}
	if cfg.Push != nil {
		t.Errorf("Push = %v, want nil (flag not set)", cfg.Push)
	}
	if cfg.SignCommit == nil || !*cfg.SignCommit || cfg.SignTag == nil || !*cfg.SignTag {
		t.Error("sign should set both SignCommit and SignTag")
	}
	if cfg.DependentVersion == nil || *cfg.DependentVersion != config.DependentUpgrade {
		t.Errorf("DependentVersion = %v, want upgrade", cfg.DependentVersion)
	}
}

func TestOverrides_InvalidDependentVersion(t *testing.T) {
	cmd, opts := parseReleaseFlags(t, "--dependent-version", "bogus")
	if _, err := opts.overrides(cmd); err == nil {
		t.Error("overrides() = nil error, want invalid policy error")
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "package"); got != "1 package" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(3, "package"); got != "3 packages" {
		t.Errorf("pluralize(3) = %q", got)
	}
}
