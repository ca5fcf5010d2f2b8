// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package roles grants the web app's identity the Azure RBAC roles it
// needs, scoped to the deployment's resource group.
package roles

import (
	"fmt"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("ragstack.roles")

// Role pairs a built-in role definition GUID with its display name.
type Role struct {
	// Name is the role's display name, for humans only.
	Name string

	// DefinitionID is the built-in role definition GUID.
	DefinitionID string
}

// WebAppRoles is the fixed set of roles assigned to the application
// identity. The demo only calls Azure OpenAI; database access is
// granted inside PostgreSQL, not through RBAC.
var WebAppRoles = []Role{{
	Name:         "Cognitive Services OpenAI User",
	DefinitionID: "5e0bd9bd-7b93-4f28-af87-19fc36ad61bd",
}}

// Assignment is one planned role assignment.
type Assignment struct {
	Role        Role
	PrincipalID string
	Scope       string

	// roleDefinitionID is the fully qualified definition resource ID.
	roleDefinitionID string
}

// CommandLine renders the assignment as the equivalent az CLI
// invocation, for display before confirmation.
func (a Assignment) CommandLine() string {
	return fmt.Sprintf(
		"az role assignment create --role %s --assignee %s --scope %s",
		a.Role.DefinitionID, a.PrincipalID, a.Scope,
	)
}

// Plan constructs one assignment per catalog role for the given
// principal, scoped to the resource group. Duplicate definition IDs
// in the catalog collapse to a single assignment.
func Plan(catalog []Role, subscriptionID, resourceGroup, principalID string) ([]Assignment, error) {
	if subscriptionID == "" {
		return nil, errors.NotValidf("empty subscription ID")
	}
	if resourceGroup == "" {
		return nil, errors.NotValidf("empty resource group")
	}
	if principalID == "" {
		return nil, errors.NotValidf("empty principal ID")
	}
	scope := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", subscriptionID, resourceGroup)

	seen := set.NewStrings()
	var plan []Assignment
	for _, role := range catalog {
		if seen.Contains(role.DefinitionID) {
			continue
		}
		seen.Add(role.DefinitionID)
		plan = append(plan, Assignment{
			Role:        role,
			PrincipalID: principalID,
			Scope:       scope,
			roleDefinitionID: fmt.Sprintf(
				"/subscriptions/%s/providers/Microsoft.Authorization/roleDefinitions/%s",
				subscriptionID, role.DefinitionID,
			),
		})
	}
	return plan, nil
}
