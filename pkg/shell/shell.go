// Package shell runs external commands for release hooks and package
// manager invocations.
package shell

import (
	"context"
	"os"
	"os/exec"
	"sort"

	"github.com/matzehuels/towline/pkg/errors"
)

// Run executes command (argv form) in dir with env overlaid onto the
// current process environment. The command's output goes to the operator's
// terminal. A non-zero exit is returned as an error.
func Run(ctx context.Context, dir string, env map[string]string, command ...string) error {
	if len(command) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "empty hook command")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), flatten(env)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output executes command in dir and returns its combined output, for
// callers that parse results instead of streaming them.
func Output(ctx context.Context, dir string, command ...string) (string, error) {
	if len(command) == 0 {
		return "", errors.New(errors.ErrCodeInvalidConfig, "empty command")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// flatten renders the env map in sorted order so command invocations are
// reproducible in logs and tests.
func flatten(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
