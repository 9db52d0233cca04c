// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/neuroscholar/internal/httputil"
)

// DefaultServiceURL is where a local parse service listens.
const DefaultServiceURL = "http://localhost:8001"

// ServiceConverter posts PDFs to an HTTP parse service that answers
// POST /parse with {"text", "pages", "error"}.
type ServiceConverter struct {
	URL        string
	Client     *http.Client
	MaxRetries int
}

// NewServiceConverter returns a converter for the service at url.
func NewServiceConverter(url string, timeout time.Duration, maxRetries int) *ServiceConverter {
	if url == "" {
		url = DefaultServiceURL
	}
	return &ServiceConverter{
		URL:        strings.TrimRight(url, "/"),
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
	}
}

type parseResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// Convert implements PDFConverter.
func (s *ServiceConverter) Convert(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL+"/parse", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling parse service: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("parse service: %w", err)
	}

	var result parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding parse response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("PDF parse error: %s", result.Error)
	}
	return result.Text, nil
}

// Healthy reports whether the parse service answers GET /health with 200.
func (s *ServiceConverter) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
