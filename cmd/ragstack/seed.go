// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/database"
)

type seedCommand struct {
	cmd.CommandBase
	dbCommandBase

	catalogFile string
}

func newSeedCommand() cmd.Command {
	return &seedCommand{}
}

// Info implements cmd.Command.
func (c *seedCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "seed",
		Purpose: "Load the product catalog into the database.",
		Doc: `
seed loads the product catalog file into the items table. Items whose
ids are already present are left untouched, so seeding is idempotent.
`,
	}
}

// SetFlags implements cmd.Command.
func (c *seedCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.catalogFile, "file", "seed_data.json", "Path to the catalog file")
}

// Init implements cmd.Command.
func (c *seedCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *seedCommand) Run(ctx *cmd.Context) error {
	items, err := database.ReadCatalog(c.catalogFile)
	if err != nil {
		return errors.Trace(err)
	}
	cfg, err := database.ConfigFromEnv()
	if err != nil {
		return errors.Trace(err)
	}
	conn, err := c.open(ctx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer conn.Close()

	inserted, err := database.Seed(ctx, conn, items)
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("Inserted %d of %d catalog items.", inserted, len(items))
	return nil
}
