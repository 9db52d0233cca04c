// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hf calls hosted pipelines on the Hugging Face Inference API. It
// serves all four model roles: extractive QA, feature extraction,
// text generation and summarization.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/neuroscholar/internal/httputil"
	"github.com/pdiddy/neuroscholar/internal/model"
)

const backendName = "hf"

// Default endpoint and models.
const (
	DefaultBaseURL            = "https://router.huggingface.co/hf-inference/models"
	DefaultQAModel            = "distilbert-base-cased-distilled-squad"
	DefaultEmbeddingModel     = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultGenerationModel    = "gpt2"
	DefaultSummarizationModel = "facebook/bart-large-cnn"
)

// Client holds the connection settings shared by every pipeline.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTP       *http.Client
	MaxRetries int
}

// NewClient returns a Client for baseURL, falling back to DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
	}
}

// errorBody is the error envelope returned by the Inference API.
type errorBody struct {
	Error string `json:"error"`
}

// post sends payload to the pipeline for modelID and decodes the response
// into out. All failures are returned as *model.InferenceError for op.
func (c *Client) post(ctx context.Context, op, modelID string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("marshaling request: %w", err))
	}

	url := c.BaseURL + "/" + modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-wait-for-model", "true")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("calling %s: %w", modelID, err))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		var eb errorBody
		if se, ok := err.(*httputil.StatusError); ok && json.Unmarshal([]byte(se.Body), &eb) == nil && eb.Error != "" {
			return model.Errorf(backendName, op, "%s returned %d: %s", modelID, se.Code, eb.Error)
		}
		return model.Wrap(backendName, op, fmt.Errorf("%s: %w", modelID, err))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.Wrap(backendName, op, fmt.Errorf("decoding %s response: %w", modelID, err))
	}

	slog.Debug("inference call", "backend", backendName, "op", op, "model", modelID, "elapsed", time.Since(start))
	return nil
}
