// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openai serves embeddings and generation through the OpenAI API or
// any endpoint compatible with it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/neuroscholar/internal/model"
)

const backendName = "openai"

// Default models.
const (
	DefaultGenerationModel = "gpt-4o-mini"
	DefaultEmbeddingModel  = "text-embedding-3-small"
)

// ErrAPIKeyNotSet is returned by New when no API key is configured.
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: configure openai.api_key or .secrets/openai-api-key")

// Client wraps the official SDK client for one model.
type Client struct {
	client openai.Client
	model  string
}

// New returns a Client for modelID. baseURL may point at a compatible server;
// empty means api.openai.com. Retries on 429 and 5xx are left to the SDK,
// bounded by maxRetries.
func New(apiKey, baseURL, modelID string, timeout time.Duration, maxRetries int) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &Client{client: openai.NewClient(opts...), model: modelID}, nil
}

// ModelName returns the configured model.
func (c *Client) ModelName() string { return c.model }

// Generate implements model.Generator with a single user message. The API has
// no top-k control, so TopK is ignored.
func (c *Client) Generate(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if cfg.MaxLength > 0 {
		params.MaxTokens = openai.Int(int64(cfg.MaxLength))
	}
	if cfg.DoSample {
		params.Temperature = openai.Float(cfg.Temperature)
		params.Seed = openai.Int(cfg.Seed)
	} else {
		params.Temperature = openai.Float(0)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("chat completion: %w", err))
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", model.Errorf(backendName, "generate", "%s returned no completion", c.model)
	}
	return completion.Choices[0].Message.Content, nil
}

// Embed implements model.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, model.Wrap(backendName, "embed", fmt.Errorf("creating embedding: %w", err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, model.Errorf(backendName, "embed", "%s returned no embedding", c.model)
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

var (
	_ model.Embedder  = (*Client)(nil)
	_ model.Generator = (*Client)(nil)
)
