package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/towline/pkg/config"
	"github.com/matzehuels/towline/pkg/gitops"
	"github.com/matzehuels/towline/pkg/plan"
	"github.com/matzehuels/towline/pkg/workspace"
)

type changesOpts struct {
	workspaceRoot string
	configPath    string
	prevTagName   string
}

// newChangesCmd creates the changes command: a read-only report of what
// each releasable package has touched since its previous release tag.
func newChangesCmd() *cobra.Command {
	opts := &changesOpts{workspaceRoot: "."}

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show files changed in each package since its last release",
		Long: `Show, per releasable package, the files changed since the package's
previous release tag. Useful for deciding what needs a release before
running one. Lock-file changes are attributed only to binary-producing
packages.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runChanges(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.workspaceRoot, "path", "C", opts.workspaceRoot, "workspace directory")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "custom configuration file")
	cmd.Flags().StringVar(&opts.prevTagName, "prev-tag-name", "", "override the previous tag used for change detection")

	return cmd
}

func runChanges(ctx context.Context, opts *changesOpts) error {
	logger := loggerFromContext(ctx)

	root, err := filepath.Abs(opts.workspaceRoot)
	if err != nil {
		return err
	}
	ws, err := workspace.Load(root)
	if err != nil {
		return err
	}
	logger.Debug("loaded workspace", "root", ws.Root, "members", len(ws.Members))

	resolver, err := config.NewResolver(ws, opts.configPath, config.Config{})
	if err != nil {
		return err
	}
	runDate := time.Now().UTC().Format("2006-01-02")
	pkgs, err := plan.Load(ws, resolver, plan.Options{Date: runDate, PrevTagName: opts.prevTagName})
	if err != nil {
		return err
	}

	git := gitops.New(ws.Root)
	for _, p := range pkgs {
		changed, err := git.ChangedFiles(ctx, p.PrevTag)
		if err != nil {
			return err
		}
		if changed == nil {
			printWarning("%s: previous tag %s not found", p.Name(), p.PrevTag)
			continue
		}

		files := p.OwnedChanges(changed, ws.Root, ws.LockPath)
		if len(files) == 0 {
			printInfo("%s: no changes since %s", p.Name(), StyleDim.Render(p.PrevTag))
			continue
		}
		fmt.Println(StyleTitle.Render(p.Name()) + " " +
			StyleDim.Render(fmt.Sprintf("%s since %s", pluralize(len(files), "file"), p.PrevTag)))
		for _, f := range files {
			fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(f))
		}
	}
	return nil
}
