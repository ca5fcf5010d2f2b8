// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package database

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// MaintenanceDatabase is the database roles must be assigned from.
const MaintenanceDatabase = "postgres"

// Connect opens a pool against the configured database, registering
// the pgvector wire types on every connection.
func Connect(ctx context.Context, cfg *Config, cred azcore.TokenCredential) (*pgxpool.Pool, error) {
	password, err := cfg.EffectivePassword(ctx, cred)
	if err != nil {
		return nil, errors.Trace(err)
	}
	poolConfig, err := pgxpool.ParseConfig(connString(cfg))
	if err != nil {
		return nil, errors.Annotate(err, "parsing connection string")
	}
	poolConfig.ConnConfig.Password = password
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Annotatef(err, "connecting to %q", cfg.Host)
	}
	return pool, nil
}

func connString(cfg *Config) string {
	s := fmt.Sprintf("host=%s user=%s dbname=%s", cfg.Host, cfg.Username, cfg.Database)
	if cfg.SSLMode != "" {
		s += " sslmode=" + cfg.SSLMode
	}
	return s
}

const schemaDDL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS items (
	id SERIAL PRIMARY KEY,
	type TEXT NOT NULL,
	brand TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	embedding vector(1536)
);

CREATE INDEX IF NOT EXISTS items_embedding_idx
	ON items USING hnsw (embedding vector_cosine_ops);
`

// EnsureSchema enables the pgvector extension and creates the items
// table and its index.
func EnsureSchema(ctx context.Context, q Execer) error {
	logger.Infof("ensuring pgvector extension and items schema")
	if _, err := q.Exec(ctx, schemaDDL); err != nil {
		return errors.Annotate(err, "creating schema")
	}
	return nil
}
