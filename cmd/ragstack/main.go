// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// ragstack provisions and operates the product-chat demo on Azure:
// a PostgreSQL flexible server with pgvector, the RBAC roles its
// identity needs, and the catalog data the web app serves.
package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"
)

var ragstackDoc = `
ragstack deploys the product-chat demo to Azure. It provisions a
PostgreSQL flexible server with Entra-only authentication and the
pgvector extension enabled, grants the application identity its Azure
roles and database privileges, loads the product catalog, and serves
the demo API.

The commands are ordered the way a deployment runs:

    ragstack provision         create the server and databases
    ragstack assign-roles      grant the app identity its Azure roles
    ragstack setup-db          create the schema and database principal
    ragstack seed              load the product catalog
    ragstack update-embeddings recompute catalog embeddings
    ragstack serve             serve the demo API
`

func main() {
	os.Exit(Main(os.Args))
}

// Main runs the ragstack command with the given arguments. It exists
// apart from main so tests can invoke it with arbitrary arguments.
func Main(args []string) int {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return cmd.Main(newRagstackCommand(), ctx, args[1:])
}

func newRagstackCommand() cmd.Command {
	ragstack := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "ragstack",
		Doc:     ragstackDoc,
		Purpose: "Deploy and operate the product-chat demo on Azure.",
		Log:     &cmd.Log{},
	})
	ragstack.Register(newProvisionCommand())
	ragstack.Register(newStatusCommand())
	ragstack.Register(newAssignRolesCommand())
	ragstack.Register(newSetupDBCommand())
	ragstack.Register(newSeedCommand())
	ragstack.Register(newUpdateEmbeddingsCommand())
	ragstack.Register(newRunHooksCommand())
	ragstack.Register(newServeCommand())
	return ragstack
}
