// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azuretesting

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// FakeCredential is an azcore.TokenCredential that hands out a
// static token without talking to Entra.
type FakeCredential struct {
	// Token is the token to return; "fake-token" when empty.
	Token string

	// Scopes records the scopes requested of the credential.
	Scopes []string
}

// GetToken implements azcore.TokenCredential.
func (c *FakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.Scopes = append(c.Scopes, opts.Scopes...)
	token := c.Token
	if token == "" {
		token = "fake-token"
	}
	return azcore.AccessToken{
		Token:     token,
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}
