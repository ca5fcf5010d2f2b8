// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package embeddings computes text embeddings with an Azure OpenAI
// deployment, authenticated through Entra.
package embeddings

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/ragstack/ragstack/internal/azureauth"
)

var logger = loggo.GetLogger("ragstack.embeddings")

const defaultAPIVersion = "2024-06-01"

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// ClientConfig identifies the Azure OpenAI deployment to call.
type ClientConfig struct {
	// Endpoint is the resource endpoint, e.g.
	// https://myaccount.openai.azure.com.
	Endpoint string

	// Deployment is the embedding model deployment name.
	Deployment string

	// APIVersion overrides the service API version when non-empty.
	APIVersion string

	// APIKey authenticates with the resource's api-key header instead
	// of an Entra bearer token when non-empty.
	APIKey string

	// Dimensions requests reduced-dimension embeddings when non-zero.
	Dimensions int
}

// Validate validates the client configuration.
func (c ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.NotValidf("empty Endpoint")
	}
	if c.Deployment == "" {
		return errors.NotValidf("empty Deployment")
	}
	return nil
}

// Client calls the Azure OpenAI embeddings API.
type Client struct {
	config   ClientConfig
	pipeline runtime.Pipeline
}

// apiKeyPolicy authenticates requests with the resource's api-key
// header.
type apiKeyPolicy struct {
	key string
}

// Do implements policy.Policy.
func (p apiKeyPolicy) Do(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set("api-key", p.key)
	return req.Next()
}

// NewClient returns a Client authenticating with cred, or with the
// config's api-key when set (cred may then be nil). Pass non-nil
// options to override the transport in tests.
func NewClient(config ClientConfig, cred azcore.TokenCredential, options *policy.ClientOptions) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.APIVersion == "" {
		config.APIVersion = defaultAPIVersion
	}
	if options == nil {
		options = &policy.ClientOptions{}
	}
	var auth policy.Policy
	if config.APIKey != "" {
		auth = apiKeyPolicy{key: config.APIKey}
	} else {
		auth = runtime.NewBearerTokenPolicy(cred, []string{azureauth.CognitiveScope}, nil)
	}
	pipeline := runtime.NewPipeline("ragstack.embeddings", "1.0.0", runtime.PipelineOptions{
		PerRetry: []policy.Policy{auth},
	}, options)
	return &Client{config: config, pipeline: pipeline}, nil
}

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Embedder. The returned vectors are ordered to match
// the inputs.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	url := runtime.JoinPaths(c.config.Endpoint, "openai", "deployments", c.config.Deployment, "embeddings")
	req, err := runtime.NewRequest(ctx, http.MethodPost, url)
	if err != nil {
		return nil, errors.Trace(err)
	}
	query := req.Raw().URL.Query()
	query.Set("api-version", c.config.APIVersion)
	req.Raw().URL.RawQuery = query.Encode()

	if err := runtime.MarshalAsJSON(req, embeddingsRequest{
		Input:      inputs,
		Dimensions: c.config.Dimensions,
	}); err != nil {
		return nil, errors.Trace(err)
	}

	logger.Debugf("embedding %d inputs with deployment %q", len(inputs), c.config.Deployment)
	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, errors.Annotate(err, "calling embeddings API")
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, errors.Trace(runtime.NewResponseError(resp))
	}
	var result embeddingsResponse
	if err := runtime.UnmarshalAsJSON(resp, &result); err != nil {
		return nil, errors.Annotate(err, "decoding embeddings response")
	}
	if len(result.Data) != len(inputs) {
		return nil, errors.Errorf(
			"embeddings API returned %d vectors for %d inputs",
			len(result.Data), len(inputs),
		)
	}
	vectors := make([][]float32, len(inputs))
	for _, datum := range result.Data {
		if datum.Index < 0 || datum.Index >= len(inputs) {
			return nil, errors.Errorf("embeddings API returned out of range index %d", datum.Index)
		}
		vectors[datum.Index] = datum.Embedding
	}
	return vectors, nil
}
