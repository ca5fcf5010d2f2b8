// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package provision

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/juju/errors"
)

// Deployer applies deployment templates to a resource group.
type Deployer struct {
	// Credential authenticates the ARM clients.
	Credential azcore.TokenCredential

	// SubscriptionID is the target subscription.
	SubscriptionID string

	// ClientOptions configures the ARM clients; nil for defaults.
	// Tests inject a transport here.
	ClientOptions *arm.ClientOptions
}

// Validate checks the deployer is complete.
func (d Deployer) Validate() error {
	if d.Credential == nil {
		return errors.NotValidf("nil Credential")
	}
	if d.SubscriptionID == "" {
		return errors.NotValidf("empty SubscriptionID")
	}
	return nil
}

// EnsureResourceGroup creates the resource group if it does not exist.
func (d Deployer) EnsureResourceGroup(ctx context.Context, name, location string) error {
	client, err := armresources.NewResourceGroupsClient(d.SubscriptionID, d.Credential, d.ClientOptions)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("ensuring resource group %q in %q", name, location)
	_, err = client.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	return errors.Annotatef(err, "creating resource group %q", name)
}

// Deploy submits the template as a deployment in the given resource
// group and waits for it to complete, returning the template outputs.
func (d Deployer) Deploy(
	ctx context.Context,
	resourceGroup, deploymentName string,
	template *Params,
) (map[string]string, error) {
	t := Template(template)
	templateMap, err := t.Map()
	if err != nil {
		return nil, errors.Trace(err)
	}

	client, err := armresources.NewDeploymentsClient(d.SubscriptionID, d.Credential, d.ClientOptions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	logger.Infof("deploying %q to resource group %q", deploymentName, resourceGroup)
	poller, err := client.BeginCreateOrUpdate(ctx, resourceGroup, deploymentName,
		armresources.Deployment{
			Properties: &armresources.DeploymentProperties{
				Template: templateMap,
				Mode:     to.Ptr(armresources.DeploymentModeIncremental),
			},
		}, nil,
	)
	if err != nil {
		return nil, errors.Annotatef(err, "creating deployment %q", deploymentName)
	}
	result, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "waiting for deployment %q", deploymentName)
	}
	if result.Properties == nil {
		return nil, nil
	}
	return deploymentOutputs(result.Properties.Outputs), nil
}

// deploymentOutputs flattens the raw deployment outputs into
// name/value string pairs.
func deploymentOutputs(raw interface{}) map[string]string {
	outputs, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	result := make(map[string]string)
	for name, entry := range outputs {
		attrs, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if value, ok := attrs["value"]; ok {
			result[name] = fmt.Sprint(value)
		}
	}
	return result
}
