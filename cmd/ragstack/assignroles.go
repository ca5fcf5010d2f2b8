// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/roles"
)

var assignRolesDoc = `
assign-roles grants the application identity the Azure roles the demo
needs, scoped to the deployment's resource group. The planned
assignments are displayed and must be confirmed before anything is
executed; declining leaves the subscription untouched.

The resource group and principal are taken from the deployment
environment ($AZURE_RESOURCE_GROUP and $AZURE_PRINCIPAL_ID) unless
overridden with flags.
`

const assignRolesExamples = `
    ragstack assign-roles
    ragstack assign-roles --principal 00000000-1111-2222-3333-444444444444
    ragstack assign-roles --yes
`

type assignRolesCommand struct {
	cmd.CommandBase
	azureCommandBase

	resourceGroup string
	principalID   string
	assumeYes     bool

	clock clock.Clock
}

func newAssignRolesCommand() cmd.Command {
	return &assignRolesCommand{clock: clock.WallClock}
}

// Info implements cmd.Command.
func (c *assignRolesCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "assign-roles",
		Purpose:  "Grant the application identity its Azure roles.",
		Doc:      assignRolesDoc,
		Examples: assignRolesExamples,
	}
}

// SetFlags implements cmd.Command.
func (c *assignRolesCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.resourceGroup, "resource-group", "", "Resource group to scope the assignments to (default $AZURE_RESOURCE_GROUP)")
	f.StringVar(&c.principalID, "principal", "", "Object ID of the identity to grant roles to (default $AZURE_PRINCIPAL_ID)")
	f.StringVar(&c.subscriptionID, "subscription", "", "Subscription ID (default $AZURE_SUBSCRIPTION_ID, else discovered)")
	f.BoolVar(&c.assumeYes, "yes", false, "Skip the confirmation prompt")
}

// Init implements cmd.Command.
func (c *assignRolesCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *assignRolesCommand) Run(ctx *cmd.Context) error {
	resourceGroup := c.resourceGroup
	if resourceGroup == "" {
		var err error
		if resourceGroup, err = resourceGroupFromEnv(); err != nil {
			return errors.Trace(err)
		}
	}
	principalID := c.principalID
	if principalID == "" {
		if principalID = os.Getenv("AZURE_PRINCIPAL_ID"); principalID == "" {
			return errors.New(
				"can't find AZURE_PRINCIPAL_ID environment variable; " +
					"pass --principal, or set it by hand (with azd, run azd env refresh)",
			)
		}
	}

	cred, err := c.credential()
	if err != nil {
		return errors.Trace(err)
	}
	subscriptionID, err := c.resolveSubscription(ctx, cred)
	if err != nil {
		return errors.Trace(err)
	}
	plan, err := roles.Plan(roles.WebAppRoles, subscriptionID, resourceGroup, principalID)
	if err != nil {
		return errors.Trace(err)
	}

	fmt.Fprintln(ctx.Stdout, "The following role assignments will be created:")
	for _, assignment := range plan {
		fmt.Fprintf(ctx.Stdout, "    %s\n", assignment.CommandLine())
	}
	if !c.assumeYes && !userConfirmYes(ctx) {
		fmt.Fprintln(ctx.Stdout, "Role assignment cancelled.")
		return nil
	}

	assigner := roles.Assigner{
		Credential:     cred,
		SubscriptionID: subscriptionID,
		ClientOptions:  c.clientOptions,
		Clock:          c.clock,
		NewUUID:        uuid.NewRandom,
	}
	if err := assigner.Assign(ctx, plan); err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(ctx.Stdout, "Assigned %d role(s).\n", len(plan))
	return nil
}
