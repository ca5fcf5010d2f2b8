// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azureauth

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/juju/errors"
)

// DiscoverSubscription returns the subscription ID visible to the
// credential. It fails if the credential can see no subscriptions,
// or more than one; in the latter case the caller must specify the
// subscription explicitly.
func DiscoverSubscription(ctx context.Context, cred azcore.TokenCredential, opts *arm.ClientOptions) (string, error) {
	client, err := armsubscriptions.NewClient(cred, opts)
	if err != nil {
		return "", errors.Trace(err)
	}
	var ids []string
	pager := client.NewListPager(nil)
	for pager.More() {
		next, err := pager.NextPage(ctx)
		if err != nil {
			return "", errors.Annotate(err, "listing subscriptions")
		}
		for _, sub := range next.Value {
			if sub.SubscriptionID == nil {
				continue
			}
			ids = append(ids, *sub.SubscriptionID)
		}
	}
	switch len(ids) {
	case 0:
		return "", errors.NotFoundf("subscription for credential")
	case 1:
		logger.Debugf("discovered subscription %q", ids[0])
		return ids[0], nil
	}
	return "", errors.Errorf(
		"credential has access to %d subscriptions; set AZURE_SUBSCRIPTION_ID to choose one", len(ids),
	)
}
