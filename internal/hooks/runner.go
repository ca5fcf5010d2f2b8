// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
)

// Runner executes the hooks wired by a descriptor.
type Runner struct {
	// Env holds extra NAME=VALUE pairs appended to the parent
	// environment, e.g. deployment outputs.
	Env []string

	// Stdout and Stderr receive the scripts' output.
	Stdout io.Writer
	Stderr io.Writer

	// runCommand is overridable for tests.
	runCommand func(ctx context.Context, hook Hook, env []string) error
}

// Run executes the hooks for the given events sequentially. A hook
// failure aborts the remaining events unless the hook is marked
// continueOnError.
func (r *Runner) Run(ctx context.Context, d *Descriptor, events ...string) error {
	if len(events) == 0 {
		events = d.Ordered()
	}
	env := append(os.Environ(), r.Env...)
	run := r.runCommand
	if run == nil {
		run = r.execute
	}
	for _, event := range events {
		hook, ok := d.Hooks[event]
		if !ok {
			logger.Debugf("no hook wired for %q", event)
			continue
		}
		logger.Infof("running %s hook: %s", event, hook.Run)
		if err := run(ctx, hook, env); err != nil {
			if hook.ContinueOnError {
				logger.Warningf("%s hook failed (continuing): %v", event, err)
				continue
			}
			return errors.Annotatef(err, "running %s hook", event)
		}
	}
	return nil
}

// execute runs a single hook. With a shell configured the script is
// handed to it verbatim; otherwise the script is split into argv and
// executed directly.
func (r *Runner) execute(ctx context.Context, hook Hook, env []string) error {
	var cmd *exec.Cmd
	if hook.Shell != "" {
		cmd = exec.CommandContext(ctx, hook.Shell, "-c", hook.Run)
	} else {
		args, err := shellquote.Split(hook.Run)
		if err != nil {
			return errors.Annotatef(err, "parsing script %q", hook.Run)
		}
		if len(args) == 0 {
			return errors.NotValidf("empty script")
		}
		cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	}
	cmd.Dir = hook.Dir
	cmd.Env = env
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("script exited %d", exitErr.ExitCode())
		}
		return errors.Trace(err)
	}
	return nil
}
