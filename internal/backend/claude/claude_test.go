// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neuroscholar/internal/httputil"
	"github.com/pdiddy/neuroscholar/internal/model"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	m.Run()
}

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		assert.Equal(t, 0.8, req.Temperature)
		assert.Equal(t, 50, req.TopK)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		json.NewEncoder(w).Encode(claudeResponse{Content: []claudeContent{
			{Type: "text", Text: " What is measured?"},
			{Type: "tool_use"},
			{Type: "text", Text: "\n2. Why?"},
		}})
	}))
	defer ts.Close()

	b := New("ak-test", ts.URL, "", time.Second, 1)
	out, err := b.Generate(context.Background(), "prompt", model.SamplingConfig{
		MaxLength: 300, DoSample: true, Temperature: 0.8, TopK: 50, Seed: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, " What is measured?\n2. Why?", out)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"type":"error"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "no text blocks",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"content":[]}`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := New("k", ts.URL, "", time.Second, 1).Generate(context.Background(), "p", model.SamplingConfig{})
			assert.ErrorIs(t, err, model.ErrInference)
		})
	}
}
