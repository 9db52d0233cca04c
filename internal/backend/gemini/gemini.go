// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini serves embeddings and generation through the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/neuroscholar/internal/model"
)

const backendName = "gemini"

// Default models.
const (
	DefaultGenerationModel = "gemini-2.0-flash"
	DefaultEmbeddingModel  = "text-embedding-004"
)

// ErrAPIKeyNotSet is returned by New when no API key is configured.
var ErrAPIKeyNotSet = errors.New("Gemini API key not set: configure gemini.api_key or .secrets/gemini-api-key")

// Client is a thin wrapper around the official genai client for one model.
type Client struct {
	cli   *genai.Client
	model string
}

// New creates a Client for modelID. baseURL overrides the API endpoint and is
// normally empty.
func New(ctx context.Context, apiKey, baseURL, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{cli: cli, model: modelID}, nil
}

func ptr[T any](v T) *T { return &v }

// Generate implements model.Generator.
func (c *Client) Generate(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(cfg.MaxLength)}
	if cfg.DoSample {
		gc.Temperature = ptr(float32(cfg.Temperature))
		gc.TopK = ptr(float32(cfg.TopK))
		gc.Seed = ptr(int32(cfg.Seed))
	} else {
		gc.Temperature = ptr(float32(0))
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model, genai.Text(prompt), gc)
	if err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("generating content: %w", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", model.Errorf(backendName, "generate", "%s returned no candidates", c.model)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", model.Errorf(backendName, "generate", "%s returned empty text", c.model)
	}
	return b.String(), nil
}

// Embed implements model.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.cli.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, model.Wrap(backendName, "embed", fmt.Errorf("embedding content: %w", err))
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, model.Errorf(backendName, "embed", "%s returned no embedding", c.model)
	}
	return resp.Embeddings[0].Values, nil
}

var (
	_ model.Embedder  = (*Client)(nil)
	_ model.Generator = (*Client)(nil)
)
