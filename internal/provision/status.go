// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package provision

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/postgresql/armpostgresqlflexibleservers/v4"
	"github.com/juju/errors"
)

// ServerStatus is a point-in-time view of a flexible server.
type ServerStatus struct {
	Name     string `yaml:"name"`
	State    string `yaml:"state"`
	Version  string `yaml:"version"`
	Fqdn     string `yaml:"fqdn"`
	Location string `yaml:"location"`
}

// Status reads the live state of the named server.
func (d Deployer) Status(ctx context.Context, resourceGroup, serverName string) (*ServerStatus, error) {
	client, err := armpostgresqlflexibleservers.NewServersClient(d.SubscriptionID, d.Credential, d.ClientOptions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	resp, err := client.Get(ctx, resourceGroup, serverName, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "getting server %q", serverName)
	}
	status := &ServerStatus{Name: serverName}
	if resp.Location != nil {
		status.Location = *resp.Location
	}
	if props := resp.Properties; props != nil {
		if props.State != nil {
			status.State = string(*props.State)
		}
		if props.Version != nil {
			status.Version = string(*props.Version)
		}
		if props.FullyQualifiedDomainName != nil {
			status.Fqdn = *props.FullyQualifiedDomainName
		}
	}
	return status, nil
}
