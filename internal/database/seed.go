// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package database

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/juju/errors"
	"github.com/pgvector/pgvector-go"
)

// CatalogItem is one entry of the seed catalog file. The field names
// follow the upstream dataset.
type CatalogItem struct {
	ID          int       `json:"Id"`
	Type        string    `json:"Type"`
	Brand       string    `json:"Brand"`
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	Price       float64   `json:"Price"`
	Embedding   []float32 `json:"Embedding"`
}

// ReadCatalog parses a seed catalog file.
func ReadCatalog(path string) ([]CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading seed catalog")
	}
	var items []CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Annotate(err, "parsing seed catalog")
	}
	return items, nil
}

// SeedConn is the slice of pool behaviour seeding needs; satisfied by
// pgxpool.Pool.
type SeedConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Seed inserts the catalog items in a single transaction, skipping ids
// already present. It returns the number of rows actually inserted; a
// failure part way through leaves nothing behind.
func Seed(ctx context.Context, conn SeedConn, items []CatalogItem) (int, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, errors.Annotate(err, "beginning seed transaction")
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, item := range items {
		tag, err := tx.Exec(ctx, `
INSERT INTO items (id, type, brand, name, description, price, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`,
			item.ID, item.Type, item.Brand, item.Name, item.Description, item.Price,
			pgvector.NewVector(item.Embedding),
		)
		if err != nil {
			return 0, errors.Annotatef(err, "inserting item %d", item.ID)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Annotate(err, "committing seed transaction")
	}
	logger.Infof("seeded %d of %d catalog items", inserted, len(items))
	return inserted, nil
}
