// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/hooks"
)

var runHooksDoc = `
run-hooks executes the scripts wired to deployment lifecycle events in
a descriptor file. With no arguments every wired event runs in
lifecycle order; naming events runs just those.

The known events, in order, are prepackage and postprovision.
`

const runHooksExamples = `
    ragstack run-hooks
    ragstack run-hooks postprovision
    ragstack run-hooks --file lifecycle.yaml --env POSTGRES_HOST=myserver prepackage
`

type runHooksCommand struct {
	cmd.CommandBase

	descriptorFile string
	env            []string
	events         []string
}

func newRunHooksCommand() cmd.Command {
	return &runHooksCommand{}
}

// Info implements cmd.Command.
func (c *runHooksCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "run-hooks",
		Args:     "[<event> ...]",
		Purpose:  "Run deployment lifecycle hooks.",
		Doc:      runHooksDoc,
		Examples: runHooksExamples,
	}
}

// SetFlags implements cmd.Command.
func (c *runHooksCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.descriptorFile, "file", "lifecycle.yaml", "Path to the lifecycle descriptor")
	f.Var(cmd.NewAppendStringsValue(&c.env), "env", "Extra NAME=VALUE pair for the hook environment (repeatable)")
}

// Init implements cmd.Command.
func (c *runHooksCommand) Init(args []string) error {
	for _, event := range args {
		switch event {
		case hooks.PrePackage, hooks.PostProvision:
		default:
			return errors.NotValidf("lifecycle event %q", event)
		}
	}
	c.events = args
	return nil
}

// Run implements cmd.Command.
func (c *runHooksCommand) Run(ctx *cmd.Context) error {
	descriptor, err := hooks.ReadDescriptor(c.descriptorFile)
	if err != nil {
		return errors.Trace(err)
	}
	runner := &hooks.Runner{
		Env:    c.env,
		Stdout: ctx.Stdout,
		Stderr: ctx.Stderr,
	}
	return errors.Trace(runner.Run(ctx, descriptor, c.events...))
}
