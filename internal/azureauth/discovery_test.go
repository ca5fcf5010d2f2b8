// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azureauth_test

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/azureauth"
	"github.com/ragstack/ragstack/internal/azuretesting"
)

type discoverySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&discoverySuite{})

func subscriptionListSender(ids ...string) *azuretesting.MockSender {
	var subs []*armsubscriptions.Subscription
	for _, id := range ids {
		subs = append(subs, &armsubscriptions.Subscription{
			SubscriptionID: to.Ptr(id),
		})
	}
	return azuretesting.NewSenderWithValue(armsubscriptions.SubscriptionListResult{
		Value: subs,
	})
}

func clientOptions(sender policy.Transporter) *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{Transport: sender},
	}
}

func (s *discoverySuite) TestDiscoverSubscription(c *gc.C) {
	senders := azuretesting.Senders{
		subscriptionListSender("22222222-2222-2222-2222-222222222222"),
	}
	id, err := azureauth.DiscoverSubscription(
		context.Background(), &azuretesting.FakeCredential{}, clientOptions(&senders),
	)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "22222222-2222-2222-2222-222222222222")
}

func (s *discoverySuite) TestDiscoverSubscriptionNone(c *gc.C) {
	senders := azuretesting.Senders{
		subscriptionListSender(),
	}
	_, err := azureauth.DiscoverSubscription(
		context.Background(), &azuretesting.FakeCredential{}, clientOptions(&senders),
	)
	c.Assert(err, jc.Satisfies, errors.IsNotFound)
}

func (s *discoverySuite) TestDiscoverSubscriptionAmbiguous(c *gc.C) {
	senders := azuretesting.Senders{
		subscriptionListSender(
			"22222222-2222-2222-2222-222222222222",
			"33333333-3333-3333-3333-333333333333",
		),
	}
	_, err := azureauth.DiscoverSubscription(
		context.Background(), &azuretesting.FakeCredential{}, clientOptions(&senders),
	)
	c.Assert(err, gc.ErrorMatches, ".*set AZURE_SUBSCRIPTION_ID to choose one")
}
