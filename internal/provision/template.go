// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package provision

import (
	"fmt"

	"github.com/ragstack/ragstack/internal/armtemplates"
)

const (
	serverResourceType   = "Microsoft.DBforPostgreSQL/flexibleServers"
	adminResourceType    = serverResourceType + "/administrators"
	databaseResourceType = serverResourceType + "/databases"
	firewallResourceType = serverResourceType + "/firewallRules"
	configResourceType   = serverResourceType + "/configurations"

	serverAPIVersion = "2023-03-01-preview"

	// Firewall rule names. The allow-all rule is the one the
	// extension configuration is sequenced after.
	firewallRuleAllowAll = "AllowAllIPs"
	firewallRuleAzureIPs = "AllowAllAzureServicesAndResourcesWithinAzureIps"

	// extensionsConfigName is the server parameter holding the
	// allow-list of installable extensions.
	extensionsConfigName = "azure.extensions"

	// ServerFqdnOutput is the template output carrying the server
	// hostname.
	ServerFqdnOutput = "serverFqdn"
)

type serverProperties struct {
	Version    string            `json:"version"`
	Storage    storageProperties `json:"storage"`
	AuthConfig authConfig        `json:"authConfig"`
}

type storageProperties struct {
	StorageSizeGB int `json:"storageSizeGB"`
}

type authConfig struct {
	ActiveDirectoryAuth string `json:"activeDirectoryAuth"`
	PasswordAuth        string `json:"passwordAuth"`
	TenantID            string `json:"tenantId"`
}

type adminProperties struct {
	PrincipalType string `json:"principalType"`
	PrincipalName string `json:"principalName"`
	TenantID      string `json:"tenantId"`
}

type firewallRuleProperties struct {
	StartIPAddress string `json:"startIpAddress"`
	EndIPAddress   string `json:"endIpAddress"`
}

type configurationProperties struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Template renders the deployment template for the given parameters.
//
// The server carries Entra-only authentication: password auth is
// disabled outright and an Entra administrator child resource is the
// sole login. Firewall rule variants are driven by the params' policy
// flags, and the azure.extensions configuration enabling pgvector is
// made to depend on the permissive firewall rule so that it is applied
// only once that rule exists.
func Template(p *Params) *armtemplates.Template {
	serverID := fmt.Sprintf(
		`[resourceId('%s', '%s')]`, serverResourceType, p.ServerName,
	)

	resources := []armtemplates.Resource{{
		APIVersion: serverAPIVersion,
		Type:       serverResourceType,
		Name:       p.ServerName,
		Location:   p.Location,
		Sku: &armtemplates.Sku{
			Name: p.SkuName,
			Tier: p.SkuTier,
		},
		Properties: &serverProperties{
			Version: p.PostgresVersion,
			Storage: storageProperties{StorageSizeGB: p.StorageSizeGB},
			AuthConfig: authConfig{
				ActiveDirectoryAuth: "Enabled",
				PasswordAuth:        "Disabled",
				TenantID:            p.TenantID,
			},
		},
	}, {
		APIVersion: serverAPIVersion,
		Type:       adminResourceType,
		Name:       fmt.Sprintf("%s/%s", p.ServerName, p.AdminObjectID),
		DependsOn:  []string{serverID},
		Properties: &adminProperties{
			PrincipalType: p.AdminPrincipalType,
			PrincipalName: p.AdminName,
			TenantID:      p.TenantID,
		},
	}}

	for _, db := range p.Databases {
		resources = append(resources, armtemplates.Resource{
			APIVersion: serverAPIVersion,
			Type:       databaseResourceType,
			Name:       fmt.Sprintf("%s/%s", p.ServerName, db),
			DependsOn:  []string{serverID},
		})
	}

	// The extension configuration is ordered after the permissive
	// firewall rule when there is one, otherwise after whatever
	// firewall rules exist, otherwise after the server itself.
	configDependsOn := []string{serverID}

	var firewallRules []armtemplates.Resource
	addRule := func(name, start, end string) string {
		firewallRules = append(firewallRules, armtemplates.Resource{
			APIVersion: serverAPIVersion,
			Type:       firewallResourceType,
			Name:       fmt.Sprintf("%s/%s", p.ServerName, name),
			DependsOn:  []string{serverID},
			Properties: &firewallRuleProperties{
				StartIPAddress: start,
				EndIPAddress:   end,
			},
		})
		return fmt.Sprintf(
			`[resourceId('%s', '%s', '%s')]`,
			firewallResourceType, p.ServerName, name,
		)
	}

	var ruleIDs []string
	if p.AllowAllIPs {
		id := addRule(firewallRuleAllowAll, "0.0.0.0", "255.255.255.255")
		configDependsOn = []string{id}
		ruleIDs = nil
	} else {
		if p.AllowAzureIPs {
			ruleIDs = append(ruleIDs, addRule(firewallRuleAzureIPs, "0.0.0.0", "0.0.0.0"))
		}
		for i, ip := range p.AllowedClientIPs {
			ruleIDs = append(ruleIDs, addRule(fmt.Sprintf("AllowedClientIP%d", i), ip, ip))
		}
		if len(ruleIDs) > 0 {
			configDependsOn = ruleIDs
		}
	}
	resources = append(resources, firewallRules...)

	resources = append(resources, armtemplates.Resource{
		APIVersion: serverAPIVersion,
		Type:       configResourceType,
		Name:       fmt.Sprintf("%s/%s", p.ServerName, extensionsConfigName),
		DependsOn:  configDependsOn,
		Properties: &configurationProperties{
			Value:  "VECTOR",
			Source: "user-override",
		},
	})

	return &armtemplates.Template{
		Resources: resources,
		Outputs: map[string]armtemplates.Output{
			ServerFqdnOutput: {
				Type: "string",
				Value: fmt.Sprintf(
					`[reference(resourceId('%s', '%s'), '%s').fullyQualifiedDomainName]`,
					serverResourceType, p.ServerName, serverAPIVersion,
				),
			},
		},
	}
}
