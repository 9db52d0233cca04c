// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollama calls a local Ollama server for embeddings and generation.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/neuroscholar/internal/httputil"
	"github.com/pdiddy/neuroscholar/internal/model"
)

const backendName = "ollama"

// Defaults for a local install.
const (
	DefaultBaseURL         = "http://localhost:11434"
	DefaultEmbeddingModel  = "nomic-embed-text"
	DefaultGenerationModel = "llama3.2"
)

// Client talks to one Ollama server with one model.
type Client struct {
	BaseURL    string
	Model      string
	HTTP       *http.Client
	MaxRetries int
}

// New returns a Client for baseURL and modelID. Empty values take the defaults
// for a local generation model.
func New(baseURL, modelID string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelID == "" {
		modelID = DefaultGenerationModel
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      modelID,
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed implements model.Embedder via /api/embeddings.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embeddingResponse
	if err := c.post(ctx, "embed", "/api/embeddings", embeddingRequest{Model: c.Model, Prompt: text}, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, model.Errorf(backendName, "embed", "%s returned an empty embedding", c.Model)
	}
	return out.Embedding, nil
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	Seed        int64   `json:"seed,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements model.Generator via /api/generate without streaming.
// Greedy decoding is requested as temperature 0.
func (c *Client) Generate(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	opts := generateOptions{NumPredict: cfg.MaxLength}
	if cfg.DoSample {
		opts.Temperature = cfg.Temperature
		opts.TopK = cfg.TopK
		opts.Seed = cfg.Seed
	}

	var out generateResponse
	req := generateRequest{Model: c.Model, Prompt: prompt, Options: opts}
	if err := c.post(ctx, "generate", "/api/generate", req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", model.Errorf(backendName, "generate", "%s returned an empty response", c.Model)
	}
	return out.Response, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("calling Ollama: %w", err))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return model.Wrap(backendName, op, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

var (
	_ model.Embedder  = (*Client)(nil)
	_ model.Generator = (*Client)(nil)
)
