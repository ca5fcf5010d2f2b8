// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package embeddings

import (
	"context"

	"github.com/juju/errors"

	"github.com/ragstack/ragstack/internal/database"
)

const defaultBatchSize = 16

// Refresh recomputes the embedding of every catalog item and stores
// the result. Items are embedded in batches to stay under the API's
// input limits. It returns the number of items updated.
func Refresh(ctx context.Context, conn database.ItemConn, embedder Embedder, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	items, err := database.AllItems(ctx, conn)
	if err != nil {
		return 0, errors.Trace(err)
	}
	updated := 0
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		inputs := make([]string, len(batch))
		for i, item := range batch {
			inputs[i] = item.EmbeddingText()
		}
		vectors, err := embedder.Embed(ctx, inputs)
		if err != nil {
			return updated, errors.Trace(err)
		}
		for i, item := range batch {
			if err := database.UpdateEmbedding(ctx, conn, item.ID, vectors[i]); err != nil {
				return updated, errors.Trace(err)
			}
			updated++
		}
	}
	logger.Infof("updated embeddings for %d items", updated)
	return updated, nil
}
