// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/errors"

	"github.com/ragstack/ragstack/internal/azureauth"
	"github.com/ragstack/ragstack/internal/database"
)

// dbConn is the slice of pool behaviour the commands need; satisfied
// by pgxpool.Pool, faked in tests.
type dbConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// dbCommandBase carries the database wiring shared by the commands
// that connect to PostgreSQL.
type dbCommandBase struct {
	connect       func(ctx context.Context, cfg *database.Config, cred azcore.TokenCredential) (dbConn, error)
	newCredential func() (azcore.TokenCredential, error)
}

func (c *dbCommandBase) open(ctx context.Context, cfg *database.Config) (dbConn, error) {
	var cred azcore.TokenCredential
	if cfg.IsAzure() {
		if c.newCredential == nil {
			c.newCredential = azureauth.NewCredential
		}
		var err error
		if cred, err = c.newCredential(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if c.connect == nil {
		c.connect = func(ctx context.Context, cfg *database.Config, cred azcore.TokenCredential) (dbConn, error) {
			return database.Connect(ctx, cfg, cred)
		}
	}
	conn, err := c.connect(ctx, cfg, cred)
	return conn, errors.Trace(err)
}
