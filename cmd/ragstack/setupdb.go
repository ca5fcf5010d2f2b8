// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/database"
)

var setupDBDoc = `
setup-db prepares the application database: it enables the pgvector
extension, creates the items schema, and, on a managed Azure server,
creates a database principal for the application identity and grants
it access to the public schema.

The connection settings come from the POSTGRES_* environment
variables. The application identity name comes from
$APP_IDENTITY_NAME unless overridden with --identity.
`

type setupDBCommand struct {
	cmd.CommandBase
	dbCommandBase

	identityName string
}

func newSetupDBCommand() cmd.Command {
	return &setupDBCommand{}
}

// Info implements cmd.Command.
func (c *setupDBCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "setup-db",
		Purpose: "Create the schema and the application's database principal.",
		Doc:     setupDBDoc,
	}
}

// SetFlags implements cmd.Command.
func (c *setupDBCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.identityName, "identity", "", "Application identity to create a principal for (default $APP_IDENTITY_NAME)")
}

// Init implements cmd.Command.
func (c *setupDBCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *setupDBCommand) Run(ctx *cmd.Context) error {
	cfg, err := database.ConfigFromEnv()
	if err != nil {
		return errors.Trace(err)
	}

	if cfg.IsAzure() {
		identity := c.identityName
		if identity == "" {
			if identity = os.Getenv("APP_IDENTITY_NAME"); identity == "" {
				return errors.New(
					"can't find APP_IDENTITY_NAME environment variable; " +
						"pass --identity, or set it by hand (with azd, run azd env refresh)",
				)
			}
		}
		// Principals are managed from the maintenance database.
		maintenance := *cfg
		maintenance.Database = database.MaintenanceDatabase
		conn, err := c.open(ctx, &maintenance)
		if err != nil {
			return errors.Trace(err)
		}
		defer conn.Close()
		if err := database.EnsurePrincipal(ctx, conn, identity); err != nil {
			return errors.Trace(err)
		}
		if err := database.GrantSchemaAccess(ctx, conn, identity); err != nil {
			return errors.Trace(err)
		}
	}

	conn, err := c.open(ctx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer conn.Close()
	if err := database.EnsureSchema(ctx, conn); err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("Database %q is ready.", cfg.Database)
	return nil
}
