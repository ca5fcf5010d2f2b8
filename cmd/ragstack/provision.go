// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/hooks"
	"github.com/ragstack/ragstack/internal/provision"
)

var provisionDoc = `
provision deploys a PostgreSQL flexible server from a parameters file.
The server is created with Entra-only authentication and the pgvector
extension allow-listed; the deployment outputs, the server FQDN
included, are printed when it completes.

With --lifecycle, the postprovision hooks from the given descriptor
run after the deployment, with POSTGRES_HOST set to the new server's
FQDN.
`

const provisionExamples = `
    ragstack provision --config deploy.yaml --resource-group rag-demo
    ragstack provision --config deploy.yaml --lifecycle lifecycle.yaml
`

type provisionCommand struct {
	cmd.CommandBase
	azureCommandBase

	configFile     string
	resourceGroup  string
	deploymentName string
	lifecycleFile  string
	out            cmd.Output
}

func newProvisionCommand() cmd.Command {
	return &provisionCommand{}
}

// Info implements cmd.Command.
func (c *provisionCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:     "provision",
		Purpose:  "Deploy the PostgreSQL flexible server.",
		Doc:      provisionDoc,
		Examples: provisionExamples,
	}
}

// SetFlags implements cmd.Command.
func (c *provisionCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "Path to the deployment parameters file")
	f.StringVar(&c.resourceGroup, "resource-group", "", "Resource group to deploy into (default $AZURE_RESOURCE_GROUP)")
	f.StringVar(&c.deploymentName, "deployment-name", "ragstack-postgres", "Name of the ARM deployment")
	f.StringVar(&c.lifecycleFile, "lifecycle", "", "Lifecycle descriptor whose postprovision hooks run after deployment")
	f.StringVar(&c.subscriptionID, "subscription", "", "Subscription ID (default $AZURE_SUBSCRIPTION_ID, else discovered)")
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters.Formatters())
}

// Init implements cmd.Command.
func (c *provisionCommand) Init(args []string) error {
	if c.configFile == "" {
		return errors.New("must specify a deployment parameters file with --config")
	}
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *provisionCommand) Run(ctx *cmd.Context) error {
	params, err := provision.ReadParams(c.configFile)
	if err != nil {
		return errors.Trace(err)
	}
	resourceGroup := c.resourceGroup
	if resourceGroup == "" {
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
	if err := deployer.EnsureResourceGroup(ctx, resourceGroup, params.Location); err != nil {
		return errors.Trace(err)
	}
	outputs, err := deployer.Deploy(ctx, resourceGroup, c.deploymentName, params)
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.out.Write(ctx, outputs); err != nil {
		return errors.Trace(err)
	}

	if c.lifecycleFile == "" {
		return nil
	}
	descriptor, err := hooks.ReadDescriptor(c.lifecycleFile)
	if err != nil {
		return errors.Trace(err)
	}
	runner := &hooks.Runner{
		Env:    hookEnv(outputs),
		Stdout: ctx.Stdout,
		Stderr: ctx.Stderr,
	}
	return errors.Trace(runner.Run(ctx, descriptor, hooks.PostProvision))
}

// hookEnv converts deployment outputs into the environment the
// postprovision hooks expect.
func hookEnv(outputs map[string]string) []string {
	var env []string
	if fqdn := outputs[provision.ServerFqdnOutput]; fqdn != "" {
		env = append(env, "POSTGRES_HOST="+fqdn)
	}
	return env
}
