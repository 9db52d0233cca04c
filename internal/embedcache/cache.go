// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedcache memoizes sentence embeddings. Justification selection
// embeds every sentence of the document for each question, so repeated
// questions against one document re-embed identical text; the cache serves
// those from memory and, optionally, from a SQLite file across runs.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// DefaultSize is the number of vectors kept in memory.
const DefaultSize = 4096

// Cache wraps an Embedder with a memory tier and an optional disk tier.
// Lookups go memory, disk, then the inner embedder; inner results are
// written back to both tiers. Failures of the inner embedder are not cached.
type Cache struct {
	inner   model.Embedder
	modelID string
	size    int
	mem     *lru.Cache[string, []float32]
	store   *Store

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithSize sets the memory tier capacity.
func WithSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithStore adds a persistent tier. The Cache takes ownership and closes it.
func WithStore(s *Store) Option {
	return func(c *Cache) { c.store = s }
}

// New wraps inner. modelID scopes keys so vectors from different models never mix.
func New(inner model.Embedder, modelID string, opts ...Option) (*Cache, error) {
	c := &Cache{inner: inner, modelID: modelID, size: DefaultSize}
	for _, opt := range opts {
		opt(c)
	}
	mem, err := lru.New[string, []float32](c.size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	c.mem = mem
	return c, nil
}

// Embed implements model.Embedder. Every call returns its own copy of the
// vector.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(c.modelID, text)

	if vec, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return slices.Clone(vec), nil
	}

	if c.store != nil {
		vec, ok, err := c.store.Get(ctx, key)
		if err != nil {
			slog.Warn("embedding cache read failed", "err", err)
		} else if ok {
			c.hits.Add(1)
			c.mem.Add(key, vec)
			return slices.Clone(vec), nil
		}
	}

	c.misses.Add(1)
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mem.Add(key, vec)
	if c.store != nil {
		if err := c.store.Put(ctx, key, c.modelID, vec); err != nil {
			slog.Warn("embedding cache write failed", "err", err)
		}
	}
	return slices.Clone(vec), nil
}

// Stats reports cache effectiveness since construction.
type Stats struct {
	Hits   int64 `json:"hits" yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
	Len    int   `json:"len" yaml:"len"`
}

// Stats returns hit and miss counts and the memory tier size.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.mem.Len()}
}

// Close releases the persistent tier, if any.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Key derives the cache key for text embedded by modelID.
func Key(modelID, text string) string {
	sum := sha256.Sum256([]byte(modelID + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

var _ model.Embedder = (*Cache)(nil)
