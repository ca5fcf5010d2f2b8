// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package roles_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/roles"
)

type planSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&planSuite{})

const (
	subscriptionID = "22222222-2222-2222-2222-222222222222"
	principalID    = "99999999-9999-9999-9999-999999999999"
)

func (s *planSuite) TestPlan(c *gc.C) {
	plan, err := roles.Plan(roles.WebAppRoles, subscriptionID, "rag-rg", principalID)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(plan, gc.HasLen, len(roles.WebAppRoles))
	c.Assert(plan[0].PrincipalID, gc.Equals, principalID)
	c.Assert(plan[0].Scope, gc.Equals,
		"/subscriptions/22222222-2222-2222-2222-222222222222/resourceGroups/rag-rg")
}

func (s *planSuite) TestPlanDeduplicates(c *gc.C) {
	catalog := append([]roles.Role{}, roles.WebAppRoles...)
	catalog = append(catalog, roles.WebAppRoles...)
	plan, err := roles.Plan(catalog, subscriptionID, "rag-rg", principalID)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(plan, gc.HasLen, len(roles.WebAppRoles))
}

func (s *planSuite) TestPlanValidation(c *gc.C) {
	_, err := roles.Plan(roles.WebAppRoles, "", "rag-rg", principalID)
	c.Assert(err, gc.ErrorMatches, "empty subscription ID not valid")

	_, err = roles.Plan(roles.WebAppRoles, subscriptionID, "", principalID)
	c.Assert(err, gc.ErrorMatches, "empty resource group not valid")

	_, err = roles.Plan(roles.WebAppRoles, subscriptionID, "rag-rg", "")
	c.Assert(err, gc.ErrorMatches, "empty principal ID not valid")
}

func (s *planSuite) TestCommandLine(c *gc.C) {
	plan, err := roles.Plan(roles.WebAppRoles, subscriptionID, "rag-rg", principalID)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(plan[0].CommandLine(), gc.Equals,
		"az role assignment create "+
			"--role 5e0bd9bd-7b93-4f28-af87-19fc36ad61bd "+
			"--assignee 99999999-9999-9999-9999-999999999999 "+
			"--scope /subscriptions/22222222-2222-2222-2222-222222222222/resourceGroups/rag-rg")
}
