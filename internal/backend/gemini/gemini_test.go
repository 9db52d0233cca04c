// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neuroscholar/internal/model"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), "", "", DefaultGenerationModel)
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, DefaultGenerationModel+":generateContent"), r.URL.Path)

		var body struct {
			GenerationConfig struct {
				Temperature     float64 `json:"temperature"`
				TopK            float64 `json:"topK"`
				MaxOutputTokens int     `json:"maxOutputTokens"`
				Seed            int     `json:"seed"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 0.8, body.GenerationConfig.Temperature, 1e-6)
		assert.InDelta(t, 50, body.GenerationConfig.TopK, 1e-6)
		assert.Equal(t, 300, body.GenerationConfig.MaxOutputTokens)
		assert.Equal(t, 9, body.GenerationConfig.Seed)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":" Why is the sky blue?"},{"text":"\n2. What boils?"}]}}]}`))
	}))
	defer ts.Close()

	c, err := New(context.Background(), "g-test", ts.URL, DefaultGenerationModel)
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "prompt", model.SamplingConfig{
		MaxLength: 300, DoSample: true, Temperature: 0.8, TopK: 50, Seed: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, " Why is the sky blue?\n2. What boils?", out)
}

func TestGenerateNoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	c, err := New(context.Background(), "g-test", ts.URL, DefaultGenerationModel)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "prompt", model.SamplingConfig{MaxLength: 10})
	assert.ErrorIs(t, err, model.ErrInference)
}
