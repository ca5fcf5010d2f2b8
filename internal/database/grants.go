// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/errors"
)

// Execer executes statements; satisfied by pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RowQuerier runs single-row queries; satisfied by pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GrantConn is the slice of pool behaviour the grant flow needs.
type GrantConn interface {
	Execer
	RowQuerier
}

// insufficientPrivilege is the SQLSTATE raised when the connecting
// administrator cannot issue the broad grants.
const insufficientPrivilege = "42501"

// EnsurePrincipal makes sure a PostgreSQL role exists for the given
// Entra identity, creating it through pgaadauth when absent. Must run
// against the maintenance database.
func EnsurePrincipal(ctx context.Context, conn GrantConn, identityName string) error {
	var count int
	err := conn.QueryRow(ctx,
		"SELECT count(*) FROM pgaadauth_list_principals(false) WHERE rolname = $1",
		identityName,
	).Scan(&count)
	if err != nil {
		return errors.Annotate(err, "listing database principals")
	}
	if count == 1 {
		logger.Infof("found an existing PostgreSQL role for identity %q", identityName)
		return nil
	}
	logger.Infof("creating a PostgreSQL role for identity %q", identityName)
	if _, err := conn.Exec(ctx,
		"SELECT * FROM pgaadauth_create_principal($1, false, false)", identityName,
	); err != nil {
		return errors.Annotatef(err, "creating principal %q", identityName)
	}
	return nil
}

// GrantSchemaAccess grants the identity the schema and table
// privileges the web app needs. The ALL PRIVILEGES grants require
// ownership; lacking it is reported but not fatal, matching the
// managed server's azure_pg_admin split.
func GrantSchemaAccess(ctx context.Context, conn GrantConn, identityName string) error {
	role := pgx.Identifier{identityName}.Sanitize()
	logger.Infof("granting permissions to %q", identityName)
	for _, stmt := range []string{
		fmt.Sprintf("GRANT USAGE ON SCHEMA public TO %s", role),
		fmt.Sprintf("GRANT CREATE ON SCHEMA public TO %s", role),
	} {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return errors.Annotatef(err, "granting schema access to %q", identityName)
		}
	}
	for _, stmt := range []string{
		fmt.Sprintf("GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA public TO %s", role),
		fmt.Sprintf(
			"ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT SELECT, UPDATE, INSERT, DELETE ON TABLES TO %s",
			role,
		),
	} {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			if pgErrCode(err) == insufficientPrivilege {
				logger.Warningf(
					"failed to grant ALL PRIVILEGES to %q; make sure the user has the necessary permissions",
					identityName,
				)
				return nil
			}
			return errors.Annotatef(err, "granting table privileges to %q", identityName)
		}
	}
	return nil
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
