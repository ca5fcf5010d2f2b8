// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package errorutils_test

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/errors"
	"github.com/juju/testing"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/errorutils"
)

type errorsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&errorsSuite{})

func (s *errorsSuite) TestErrorCode(c *gc.C) {
	err := error(&azcore.ResponseError{ErrorCode: "RoleAssignmentExists"})
	c.Assert(errorutils.ErrorCode(err), gc.Equals, "RoleAssignmentExists")
}

func (s *errorsSuite) TestErrorCodeAnnotated(c *gc.C) {
	err := error(&azcore.ResponseError{ErrorCode: "PrincipalNotFound"})
	err = errors.Annotate(err, "creating role assignment")
	c.Assert(errorutils.ErrorCode(err), gc.Equals, "PrincipalNotFound")
}

func (s *errorsSuite) TestErrorCodeOtherError(c *gc.C) {
	c.Assert(errorutils.ErrorCode(errors.New("boom")), gc.Equals, "")
	c.Assert(errorutils.ErrorCode(nil), gc.Equals, "")
}
