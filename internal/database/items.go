// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/juju/errors"
	"github.com/pgvector/pgvector-go"
)

// Item is one row of the demo catalog.
type Item struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Brand       string  `json:"brand"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// EmbeddingText is the textual representation fed to the embedding
// model.
func (i Item) EmbeddingText() string {
	return fmt.Sprintf("Name: %s Description: %s Type: %s", i.Name, i.Description, i.Type)
}

// Querier runs multi-row queries; satisfied by pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ItemConn is the slice of pool behaviour the item operations need.
type ItemConn interface {
	Execer
	Querier
}

// AllItems returns the whole catalog, ordered by id.
func AllItems(ctx context.Context, conn ItemConn) ([]Item, error) {
	rows, err := conn.Query(ctx,
		"SELECT id, type, brand, name, description, price FROM items ORDER BY id",
	)
	if err != nil {
		return nil, errors.Annotate(err, "listing items")
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.Type, &item.Brand, &item.Name, &item.Description, &item.Price,
		); err != nil {
			return nil, errors.Trace(err)
		}
		items = append(items, item)
	}
	return items, errors.Trace(rows.Err())
}

// UpdateEmbedding stores a freshly computed embedding for an item.
func UpdateEmbedding(ctx context.Context, conn ItemConn, id int, embedding []float32) error {
	_, err := conn.Exec(ctx,
		"UPDATE items SET embedding = $1 WHERE id = $2",
		pgvector.NewVector(embedding), id,
	)
	return errors.Annotatef(err, "updating embedding for item %d", id)
}
