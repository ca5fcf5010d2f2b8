// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/cmd/v3"
	"github.com/juju/cmd/v3/cmdtesting"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/database"
)

type setupDBSuite struct {
	testing.IsolationSuite

	conn      *stubDBConn
	databases []string
}

var _ = gc.Suite(&setupDBSuite{})

func (s *setupDBSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.conn = &stubDBConn{Stub: &testing.Stub{}}
	s.databases = nil
	s.PatchEnvironment("POSTGRES_HOST", "ragdemo.postgres.database.azure.com")
	s.PatchEnvironment("POSTGRES_USERNAME", "demo@example.com")
	s.PatchEnvironment("POSTGRES_DATABASE", "ragapp")
	s.PatchEnvironment("POSTGRES_PASSWORD", "")
	s.PatchEnvironment("POSTGRES_SSL", "")
	s.PatchEnvironment("APP_IDENTITY_NAME", "ragstack-web")
}

func (s *setupDBSuite) command() cmd.Command {
	return &setupDBCommand{
		dbCommandBase: dbCommandBase{
			newCredential: func() (azcore.TokenCredential, error) {
				return nil, nil
			},
			connect: func(ctx context.Context, cfg *database.Config, cred azcore.TokenCredential) (dbConn, error) {
				s.databases = append(s.databases, cfg.Database)
				return s.conn, nil
			},
		},
	}
}

func (s *setupDBSuite) TestSetsUpAzureDatabase(c *gc.C) {
	_, err := cmdtesting.RunCommand(c, s.command())
	c.Assert(err, jc.ErrorIsNil)

	// Principal and grants run against the maintenance database, the
	// schema against the application database.
	c.Assert(s.databases, jc.DeepEquals, []string{"postgres", "ragapp"})

	var statements []string
	for _, call := range s.conn.Calls() {
		statements = append(statements, call.Args[0].(string))
	}
	c.Assert(statements[0], jc.Contains, "pgaadauth_list_principals")
	c.Assert(statements[1], jc.Contains, "pgaadauth_create_principal")
	c.Assert(statements[len(statements)-1], jc.Contains, "CREATE EXTENSION IF NOT EXISTS vector")
	c.Assert(s.conn.closed, jc.IsTrue)
}

func (s *setupDBSuite) TestLocalSkipsPrincipal(c *gc.C) {
	s.PatchEnvironment("POSTGRES_HOST", "localhost")
	_, err := cmdtesting.RunCommand(c, s.command())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(s.databases, jc.DeepEquals, []string{"ragapp"})
	s.conn.CheckCallNames(c, "Exec")
}

func (s *setupDBSuite) TestMissingIdentity(c *gc.C) {
	s.PatchEnvironment("APP_IDENTITY_NAME", "")
	_, err := cmdtesting.RunCommand(c, s.command())
	c.Assert(err, gc.ErrorMatches, "can't find APP_IDENTITY_NAME environment variable; .*")
}

func (s *setupDBSuite) TestMissingConnectionSettings(c *gc.C) {
	s.PatchEnvironment("POSTGRES_HOST", "")
	_, err := cmdtesting.RunCommand(c, s.command())
	c.Assert(err, gc.ErrorMatches, "can't find POSTGRES_HOST, .*")
}
