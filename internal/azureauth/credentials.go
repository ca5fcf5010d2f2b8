// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package azureauth obtains Entra credentials and resolves the
// deployment identity context (subscription, principal).
package azureauth

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("ragstack.azureauth")

const (
	// DatabaseScope is the token scope for Azure Database for
	// PostgreSQL Entra authentication.
	DatabaseScope = "https://ossrdbms-aad.database.windows.net/.default"

	// CognitiveScope is the token scope for Azure OpenAI.
	CognitiveScope = "https://cognitiveservices.azure.com/.default"
)

// NewCredential returns the default Entra credential chain
// (environment, managed identity, CLI).
func NewCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Annotate(err, "building default Azure credential")
	}
	return cred, nil
}

// AccessToken fetches a raw bearer token for the given scope. The
// database uses such tokens in place of passwords.
func AccessToken(ctx context.Context, cred azcore.TokenCredential, scope string) (string, error) {
	logger.Debugf("requesting access token for %q", scope)
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", errors.Annotatef(err, "acquiring token for %q", scope)
	}
	return token.Token, nil
}
