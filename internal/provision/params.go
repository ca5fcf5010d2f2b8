// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package provision builds and applies the deployment template for an
// Azure PostgreSQL Flexible Server with the pgvector extension enabled.
package provision

import (
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/schema"
	"gopkg.in/yaml.v2"
)

var logger = loggo.GetLogger("ragstack.provision")

const (
	attrServerName       = "server-name"
	attrLocation         = "location"
	attrAdminName        = "admin-name"
	attrAdminObjectID    = "admin-object-id"
	attrAdminType        = "admin-principal-type"
	attrTenantID         = "tenant-id"
	attrDatabases        = "databases"
	attrSkuName          = "sku-name"
	attrSkuTier          = "sku-tier"
	attrStorageSizeGB    = "storage-size-gb"
	attrPostgresVersion  = "postgres-version"
	attrAllowAllIPs      = "allow-all-ips"
	attrAllowAzureIPs    = "allow-azure-ips"
	attrAllowedClientIPs = "allowed-client-ips"

	// serverNameLengthMax is the maximum length of a flexible
	// server name in Azure.
	serverNameLengthMax = 63
)

var paramsFields = schema.Fields{
	attrServerName:       schema.String(),
	attrLocation:         schema.String(),
	attrAdminName:        schema.String(),
	attrAdminObjectID:    schema.String(),
	attrAdminType:        schema.String(),
	attrTenantID:         schema.String(),
	attrDatabases:        schema.List(schema.String()),
	attrSkuName:          schema.String(),
	attrSkuTier:          schema.String(),
	attrStorageSizeGB:    schema.ForceInt(),
	attrPostgresVersion:  schema.String(),
	attrAllowAllIPs:      schema.Bool(),
	attrAllowAzureIPs:    schema.Bool(),
	attrAllowedClientIPs: schema.List(schema.String()),
}

var paramsDefaults = schema.Defaults{
	attrAdminType:        "User",
	attrDatabases:        schema.Omit,
	attrSkuName:          "Standard_B1ms",
	attrSkuTier:          "Burstable",
	attrStorageSizeGB:    32,
	attrPostgresVersion:  "15",
	attrAllowAllIPs:      false,
	attrAllowAzureIPs:    false,
	attrAllowedClientIPs: schema.Omit,
}

// Params holds the validated inputs for a server deployment.
type Params struct {
	// ServerName names the flexible server resource.
	ServerName string

	// Location is the Azure region, canonicalized.
	Location string

	// AdminName is the display name of the Entra administrator
	// identity; password authentication is disabled, so this is
	// the only way in.
	AdminName string

	// AdminObjectID is the administrator's Entra object ID.
	AdminObjectID string

	// AdminPrincipalType is User, Group or ServicePrincipal.
	AdminPrincipalType string

	// TenantID is the Entra tenant of the administrator.
	TenantID string

	// Databases are created on the server after provisioning.
	Databases []string

	SkuName         string
	SkuTier         string
	StorageSizeGB   int
	PostgresVersion string

	// AllowAllIPs opens the firewall to the world. The extension
	// configuration is sequenced after this rule.
	AllowAllIPs bool

	// AllowAzureIPs admits traffic from within Azure.
	AllowAzureIPs bool

	// AllowedClientIPs admits the listed addresses only.
	AllowedClientIPs []string
}

// ReadParams loads and validates deployment parameters from a YAML file.
func ReadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading deployment parameters")
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "parsing deployment parameters")
	}
	return validateParams(raw)
}

func validateParams(raw map[string]interface{}) (*Params, error) {
	checker := schema.FieldMap(paramsFields, paramsDefaults)
	coerced, err := checker.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "validating deployment parameters")
	}
	attrs := coerced.(map[string]interface{})

	p := &Params{
		ServerName:         attrs[attrServerName].(string),
		Location:           canonicalLocation(attrs[attrLocation].(string)),
		AdminName:          attrs[attrAdminName].(string),
		AdminObjectID:      attrs[attrAdminObjectID].(string),
		AdminPrincipalType: attrs[attrAdminType].(string),
		TenantID:           attrs[attrTenantID].(string),
		SkuName:            attrs[attrSkuName].(string),
		SkuTier:            attrs[attrSkuTier].(string),
		StorageSizeGB:      attrs[attrStorageSizeGB].(int),
		PostgresVersion:    attrs[attrPostgresVersion].(string),
		AllowAllIPs:        attrs[attrAllowAllIPs].(bool),
		AllowAzureIPs:      attrs[attrAllowAzureIPs].(bool),
	}
	p.Databases = stringList(attrs[attrDatabases])
	p.AllowedClientIPs = stringList(attrs[attrAllowedClientIPs])

	if len(p.ServerName) > serverNameLengthMax {
		return nil, errors.Errorf(
			"server name %q is too long, must be no more than %d characters",
			p.ServerName, serverNameLengthMax,
		)
	}
	if p.ServerName != strings.ToLower(p.ServerName) {
		return nil, errors.NotValidf("server name %q with upper case characters", p.ServerName)
	}
	switch p.AdminPrincipalType {
	case "User", "Group", "ServicePrincipal":
	default:
		return nil, errors.NotValidf("admin principal type %q", p.AdminPrincipalType)
	}
	return p, nil
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.(string)
	}
	return result
}

// canonicalLocation strips whitespace and lowercases a region name.
// The ARM APIs do not accept embedded whitespace; we let users write
// either form.
func canonicalLocation(s string) string {
	s = strings.Replace(s, " ", "", -1)
	return strings.ToLower(s)
}
