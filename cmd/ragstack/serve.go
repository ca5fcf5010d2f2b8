// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/database"
	"github.com/ragstack/ragstack/internal/webapp"
)

type serveCommand struct {
	cmd.CommandBase
	dbCommandBase

	addr string
}

func newServeCommand() cmd.Command {
	return &serveCommand{}
}

// Info implements cmd.Command.
func (c *serveCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "serve",
		Purpose: "Serve the demo API over the catalog database.",
	}
}

// SetFlags implements cmd.Command.
func (c *serveCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":8080", "Address to listen on")
}

// Init implements cmd.Command.
func (c *serveCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *serveCommand) Run(ctx *cmd.Context) error {
	cfg, err := database.ConfigFromEnv()
	if err != nil {
		return errors.Trace(err)
	}
	conn, err := c.open(ctx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer conn.Close()

	serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := webapp.NewServer(conn)
	if err := server.ListenAndServe(serveCtx, c.addr); err != nil && errors.Cause(err) != http.ErrServerClosed {
		return errors.Trace(err)
	}
	return nil
}
