// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package embeddings_test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/ragstack/ragstack/internal/azureauth"
	"github.com/ragstack/ragstack/internal/azuretesting"
	"github.com/ragstack/ragstack/internal/embeddings"
)

type clientSuite struct {
	testing.IsolationSuite

	requests   []*http.Request
	credential *azuretesting.FakeCredential
}

var _ = gc.Suite(&clientSuite{})

func (s *clientSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.requests = nil
	s.credential = &azuretesting.FakeCredential{}
}

func (s *clientSuite) newClient(c *gc.C, config embeddings.ClientConfig, sender policy.Transporter) *embeddings.Client {
	client, err := embeddings.NewClient(config, s.credential, &policy.ClientOptions{
		Transport: azuretesting.RequestRecorder(&s.requests, sender),
		Retry:     policy.RetryOptions{MaxRetries: -1},
	})
	c.Assert(err, jc.ErrorIsNil)
	return client
}

func (s *clientSuite) TestValidate(c *gc.C) {
	_, err := embeddings.NewClient(embeddings.ClientConfig{
		Deployment: "embed",
	}, s.credential, nil)
	c.Assert(err, gc.ErrorMatches, "empty Endpoint not valid")

	_, err = embeddings.NewClient(embeddings.ClientConfig{
		Endpoint: "https://myaccount.openai.azure.com",
	}, s.credential, nil)
	c.Assert(err, gc.ErrorMatches, "empty Deployment not valid")
}

func (s *clientSuite) TestEmbedRequest(c *gc.C) {
	sender := azuretesting.NewSenderWithValue(map[string]interface{}{
		"data": []map[string]interface{}{
			{"index": 0, "embedding": []float32{0.1, 0.2}},
			{"index": 1, "embedding": []float32{0.3, 0.4}},
		},
	})
	sender.PathPattern = "/openai/deployments/embed/embeddings"
	client := s.newClient(c, embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
		Dimensions: 2,
	}, sender)

	vectors, err := client.Embed(context.Background(), []string{"boots", "harness"})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(vectors, jc.DeepEquals, [][]float32{{0.1, 0.2}, {0.3, 0.4}})

	c.Assert(s.requests, gc.HasLen, 1)
	req := s.requests[0]
	c.Assert(req.Method, gc.Equals, "POST")
	c.Assert(req.URL.Query().Get("api-version"), gc.Equals, "2024-06-01")
	c.Assert(req.Header.Get("Authorization"), gc.Equals, "Bearer fake-token")

	var body struct {
		Input      []string `json:"input"`
		Dimensions int      `json:"dimensions"`
	}
	err = json.NewDecoder(req.Body).Decode(&body)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(body.Input, jc.DeepEquals, []string{"boots", "harness"})
	c.Assert(body.Dimensions, gc.Equals, 2)

	c.Assert(s.credential.Scopes, jc.DeepEquals, []string{azureauth.CognitiveScope})
}

func (s *clientSuite) TestEmbedAPIKey(c *gc.C) {
	sender := azuretesting.NewSenderWithValue(map[string]interface{}{
		"data": []map[string]interface{}{
			{"index": 0, "embedding": []float32{0.1}},
		},
	})
	client, err := embeddings.NewClient(embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
		APIKey:     "sekrit",
	}, nil, &policy.ClientOptions{
		Transport: azuretesting.RequestRecorder(&s.requests, sender),
		Retry:     policy.RetryOptions{MaxRetries: -1},
	})
	c.Assert(err, jc.ErrorIsNil)

	vectors, err := client.Embed(context.Background(), []string{"boots"})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(vectors, jc.DeepEquals, [][]float32{{0.1}})

	c.Assert(s.requests, gc.HasLen, 1)
	req := s.requests[0]
	c.Assert(req.Header.Get("api-key"), gc.Equals, "sekrit")
	c.Assert(req.Header.Get("Authorization"), gc.Equals, "")
	c.Assert(s.credential.Scopes, gc.HasLen, 0)
}

func (s *clientSuite) TestEmbedOrdersByIndex(c *gc.C) {
	sender := azuretesting.NewSenderWithValue(map[string]interface{}{
		"data": []map[string]interface{}{
			{"index": 1, "embedding": []float32{0.3}},
			{"index": 0, "embedding": []float32{0.1}},
		},
	})
	client := s.newClient(c, embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
	}, sender)

	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(vectors, jc.DeepEquals, [][]float32{{0.1}, {0.3}})
}

func (s *clientSuite) TestEmbedEmptyInput(c *gc.C) {
	client := s.newClient(c, embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
	}, &azuretesting.MockSender{})

	vectors, err := client.Embed(context.Background(), nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(vectors, gc.IsNil)
	c.Assert(s.requests, gc.HasLen, 0)
}

func (s *clientSuite) TestEmbedServiceError(c *gc.C) {
	sender := &azuretesting.MockSender{}
	sender.AppendResponse(azuretesting.NewResponseWithBodyAndStatus(
		azuretesting.NewBody(`{"error": {"code": "429", "message": "Requests to the Embeddings Operation have exceeded call rate limit."}}`),
		http.StatusTooManyRequests, "Too Many Requests",
	))
	client := s.newClient(c, embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
	}, sender)

	_, err := client.Embed(context.Background(), []string{"a"})
	c.Assert(err, gc.ErrorMatches, "(?s).*exceeded call rate limit.*")
}

func (s *clientSuite) TestEmbedCountMismatch(c *gc.C) {
	sender := azuretesting.NewSenderWithValue(map[string]interface{}{
		"data": []map[string]interface{}{
			{"index": 0, "embedding": []float32{0.1}},
		},
	})
	client := s.newClient(c, embeddings.ClientConfig{
		Endpoint:   "https://myaccount.openai.azure.com",
		Deployment: "embed",
	}, sender)

	_, err := client.Embed(context.Background(), []string{"a", "b"})
	c.Assert(err, gc.ErrorMatches, "embeddings API returned 1 vectors for 2 inputs")
}
