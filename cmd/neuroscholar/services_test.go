// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neuroscholar/internal/backend/hf"
	"github.com/pdiddy/neuroscholar/internal/embedcache"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestExtractorChecksParseServiceHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		warned bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()
			logs := captureLogs(t)

			cfg := types.Config{
				HTTP:       types.HTTPConfig{Timeout: time.Second},
				Extraction: types.ExtractionConfig{PDFBackend: types.PDFService, ServiceURL: srv.URL},
			}
			ex := newServices(cfg, nil).Extractor(context.Background())
			require.NotNil(t, ex)

			if tt.warned {
				assert.Contains(t, logs.String(), "PDF parse service is not healthy")
			} else {
				assert.NotContains(t, logs.String(), "not healthy")
			}
		})
	}
}

func TestCloseLogsCacheStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1, 2}})
	}))
	defer srv.Close()
	logs := captureLogs(t)

	cfg := types.Config{
		HTTP:   types.HTTPConfig{Timeout: time.Second},
		Ollama: types.EndpointConfig{BaseURL: srv.URL},
		Embedding: types.EmbeddingConfig{
			ModelConfig: types.ModelConfig{Backend: types.BackendOllama},
			Cache:       types.CacheConfig{Enabled: true, Size: 8},
		},
	}
	svc := newServices(cfg, nil)
	for range 2 {
		vec, err := svc.Embedder.Embed(context.Background(), "water boils")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, vec)
	}
	require.NoError(t, svc.Close())

	got := logs.String()
	assert.Contains(t, got, `msg="embedding cache"`)
	assert.Contains(t, got, "hits=1 misses=1 len=1")
}

func TestCacheStatsAndPurge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.db")
	cfg := types.EmbeddingConfig{
		ModelConfig: types.ModelConfig{Backend: types.BackendHF},
		Cache:       types.CacheConfig{Enabled: true, Path: path},
	}
	current := "hf/" + hf.DefaultEmbeddingModel
	require.Equal(t, current, cacheModelID(cfg))

	ctx := context.Background()
	store, err := embedcache.OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, embedcache.Key(current, "sky"), current, []float32{1}))
	require.NoError(t, store.Put(ctx, embedcache.Key("ollama/nomic-embed-text", "sky"), "ollama/nomic-embed-text", []float32{2}))
	require.NoError(t, store.Close())

	var out bytes.Buffer
	require.NoError(t, cacheStats(ctx, cfg, &out, formatText))
	assert.Equal(t, path+": 2 vectors (current model "+current+")\n", out.String())

	out.Reset()
	require.NoError(t, cachePurge(ctx, cfg, "", &out))
	assert.Equal(t, "Removed 1 vectors for "+current+" from "+path+"\n", out.String())

	out.Reset()
	require.NoError(t, cacheStats(ctx, cfg, &out, formatJSON))
	var stats cacheStatsOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 1, stats.Vectors)

	out.Reset()
	require.NoError(t, cachePurge(ctx, cfg, "ollama/nomic-embed-text", &out))
	assert.Contains(t, out.String(), "Removed 1 vectors for ollama/nomic-embed-text")
}

func TestCacheCommandsNeedPath(t *testing.T) {
	err := cacheStats(context.Background(), types.EmbeddingConfig{}, &bytes.Buffer{}, formatText)
	assert.ErrorContains(t, err, "embedding.cache.path is not set")
}
