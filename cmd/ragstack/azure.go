// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/juju/errors"

	"github.com/ragstack/ragstack/internal/azureauth"
)

// azureCommandBase carries the Azure wiring shared by the commands
// that talk to ARM. Tests inject a fake credential and transport.
type azureCommandBase struct {
	subscriptionID string

	newCredential func() (azcore.TokenCredential, error)
	clientOptions *arm.ClientOptions
}

func (c *azureCommandBase) credential() (azcore.TokenCredential, error) {
	if c.newCredential == nil {
		c.newCredential = azureauth.NewCredential
	}
	return c.newCredential()
}

// resolveSubscription returns the subscription to operate on: the
// --subscription flag, then $AZURE_SUBSCRIPTION_ID, then whatever
// single subscription the credential can see.
func (c *azureCommandBase) resolveSubscription(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	if c.subscriptionID != "" {
		return c.subscriptionID, nil
	}
	if id := os.Getenv("AZURE_SUBSCRIPTION_ID"); id != "" {
		return id, nil
	}
	id, err := azureauth.DiscoverSubscription(ctx, cred, c.clientOptions)
	return id, errors.Trace(err)
}

// resourceGroupFromEnv reads $AZURE_RESOURCE_GROUP, with guidance when
// it is missing.
func resourceGroupFromEnv() (string, error) {
	if rg := os.Getenv("AZURE_RESOURCE_GROUP"); rg != "" {
		return rg, nil
	}
	return "", errors.New(
		"can't find AZURE_RESOURCE_GROUP environment variable; " +
			"make sure the provisioning ran, or set it by hand " +
			"(with azd, run azd env refresh)",
	)
}
