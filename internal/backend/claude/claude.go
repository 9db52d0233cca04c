// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claude serves text generation through the Claude Messages API.
package claude

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

const backendName = "claude"

// DefaultAPIURL is the Messages API endpoint.
const DefaultAPIURL = "https://api.anthropic.com/v1/messages"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

const anthropicVersion = "2023-06-01"

// Backend calls the Claude API to continue a prompt.
type Backend struct {
	APIKey     string
	Model      string
	APIURL     string
	Client     *http.Client
	MaxRetries int
}

// New returns a Backend. Empty apiURL and modelID take the defaults.
func New(apiKey, apiURL, modelID string, timeout time.Duration, maxRetries int) *Backend {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	return &Backend{
		APIKey:     apiKey,
		Model:      modelID,
		APIURL:     apiURL,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopK        int             `json:"top_k,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate implements model.Generator. The Messages API has no seed, so
// cfg.Seed is ignored; greedy decoding is requested as temperature 0.
func (b *Backend) Generate(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	maxTokens := cfg.MaxLength
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	reqBody := claudeRequest{
		Model:     b.Model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}
	if cfg.DoSample {
		reqBody.Temperature = cfg.Temperature
		reqBody.TopK = cfg.TopK
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.APIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.MaxRetries)
	if err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("calling Claude API: %w", err))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("Claude API: %w", err))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", model.Wrap(backendName, "generate", fmt.Errorf("decoding Claude response: %w", err))
	}

	var text strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", model.Errorf(backendName, "generate", "no text content in Claude API response")
	}
	return text.String(), nil
}

var _ model.Generator = (*Backend)(nil)
