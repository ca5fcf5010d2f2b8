// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/ragstack/ragstack/internal/azureauth"
	"github.com/ragstack/ragstack/internal/database"
	"github.com/ragstack/ragstack/internal/embeddings"
)

var updateEmbeddingsDoc = `
update-embeddings recomputes the embedding of every catalog item with
the configured Azure OpenAI deployment and stores the results.

The deployment comes from $AZURE_OPENAI_ENDPOINT and
$AZURE_OPENAI_EMBED_DEPLOYMENT unless overridden with flags.
`

type updateEmbeddingsCommand struct {
	cmd.CommandBase
	dbCommandBase

	endpoint   string
	deployment string
	apiKey     string
	dimensions int
	batchSize  int

	newEmbedder func(config embeddings.ClientConfig) (embeddings.Embedder, error)
}

func newUpdateEmbeddingsCommand() cmd.Command {
	return &updateEmbeddingsCommand{}
}

// Info implements cmd.Command.
func (c *updateEmbeddingsCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "update-embeddings",
		Purpose: "Recompute the catalog item embeddings.",
		Doc:     updateEmbeddingsDoc,
	}
}

// SetFlags implements cmd.Command.
func (c *updateEmbeddingsCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.endpoint, "endpoint", "", "Azure OpenAI endpoint (default $AZURE_OPENAI_ENDPOINT)")
	f.StringVar(&c.deployment, "deployment", "", "Embedding model deployment (default $AZURE_OPENAI_EMBED_DEPLOYMENT)")
	f.StringVar(&c.apiKey, "api-key", "", "Authenticate with an API key instead of Entra (default $AZURE_OPENAI_API_KEY)")
	f.IntVar(&c.dimensions, "dimensions", 1536, "Embedding dimensions to request")
	f.IntVar(&c.batchSize, "batch-size", 0, "Items per embeddings API call")
}

// Init implements cmd.Command.
func (c *updateEmbeddingsCommand) Init(args []string) error {
	if c.endpoint == "" {
		c.endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	}
	if c.deployment == "" {
		c.deployment = os.Getenv("AZURE_OPENAI_EMBED_DEPLOYMENT")
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if c.endpoint == "" || c.deployment == "" {
		return errors.New(
			"can't find AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_EMBED_DEPLOYMENT " +
				"environment variables; pass --endpoint and --deployment, or set them by hand",
		)
	}
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *updateEmbeddingsCommand) Run(ctx *cmd.Context) error {
	embedder, err := c.embedder()
	if err != nil {
		return errors.Trace(err)
	}
	cfg, err := database.ConfigFromEnv()
	if err != nil {
		return errors.Trace(err)
	}
	conn, err := c.open(ctx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer conn.Close()

	updated, err := embeddings.Refresh(ctx, conn, embedder, c.batchSize)
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("Updated embeddings for %d items.", updated)
	return nil
}

func (c *updateEmbeddingsCommand) embedder() (embeddings.Embedder, error) {
	config := embeddings.ClientConfig{
		Endpoint:   c.endpoint,
		Deployment: c.deployment,
		APIKey:     c.apiKey,
		Dimensions: c.dimensions,
	}
	if c.newEmbedder != nil {
		return c.newEmbedder(config)
	}
	if config.APIKey != "" {
		return embeddings.NewClient(config, nil, nil)
	}
	if c.newCredential == nil {
		c.newCredential = azureauth.NewCredential
	}
	cred, err := c.newCredential()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return embeddings.NewClient(config, cred, nil)
}
