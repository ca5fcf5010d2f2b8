// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/provision"
)

type statusCommand struct {
	cmd.CommandBase
	azureCommandBase

	resourceGroup string
	serverName    string
	out           cmd.Output
}

func newStatusCommand() cmd.Command {
	return &statusCommand{}
}

// Info implements cmd.Command.
func (c *statusCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "status",
		Args:    "<server-name>",
		Purpose: "Show the state of a provisioned server.",
	}
}

// SetFlags implements cmd.Command.
func (c *statusCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.resourceGroup, "resource-group", "", "Resource group holding the server (default $AZURE_RESOURCE_GROUP)")
	f.StringVar(&c.subscriptionID, "subscription", "", "Subscription ID (default $AZURE_SUBSCRIPTION_ID, else discovered)")
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters.Formatters())
}

// Init implements cmd.Command.
func (c *statusCommand) Init(args []string) error {
	if len(args) < 1 {
		return errors.New("must specify a server name")
	}
	c.serverName = args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run implements cmd.Command.
func (c *statusCommand) Run(ctx *cmd.Context) error {
	resourceGroup := c.resourceGroup
	if resourceGroup == "" {
		var err error
		if resourceGroup, err = resourceGroupFromEnv(); err != nil {
			return errors.Trace(err)
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
	deployer := provision.Deployer{
		Credential:     cred,
		SubscriptionID: subscriptionID,
		ClientOptions:  c.clientOptions,
	}
	status, err := deployer.Status(ctx, resourceGroup, c.serverName)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.out.Write(ctx, status))
}
