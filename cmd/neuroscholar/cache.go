package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neuroscholar/internal/embedcache"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent embedding cache",
	Long: `Cache operates on the SQLite file named by embedding.cache.path, where
embeddings are kept across runs when the cache is enabled.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of stored embeddings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		return cacheStats(cmd.Context(), appConfig.Embedding, cmd.OutOrStdout(), format)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored embeddings for one model",
	Long: `Purge deletes the vectors stored for --model, given as backend/model
(for example hf/sentence-transformers/all-MiniLM-L6-v2). The default is the
currently configured embedding model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		modelID, _ := cmd.Flags().GetString("model")
		return cachePurge(cmd.Context(), appConfig.Embedding, modelID, cmd.OutOrStdout())
	},
}

type cacheStatsOutput struct {
	Path    string `json:"path" yaml:"path"`
	Model   string `json:"model" yaml:"model"`
	Vectors int    `json:"vectors" yaml:"vectors"`
}

func openCacheStore(c types.EmbeddingConfig) (*embedcache.Store, error) {
	if c.Cache.Path == "" {
		return nil, errors.New("embedding.cache.path is not set: there is no persistent cache")
	}
	return embedcache.OpenStore(c.Cache.Path)
}

func cacheStats(ctx context.Context, c types.EmbeddingConfig, w io.Writer, format string) error {
	store, err := openCacheStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	out := cacheStatsOutput{Path: c.Cache.Path, Model: cacheModelID(c), Vectors: n}
	return writeOutput(w, format, out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %d vectors (current model %s)\n", out.Path, out.Vectors, out.Model)
		return err
	})
}

func cachePurge(ctx context.Context, c types.EmbeddingConfig, modelID string, w io.Writer) error {
	store, err := openCacheStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if modelID == "" {
		modelID = cacheModelID(c)
	}
	n, err := store.Purge(ctx, modelID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Removed %d vectors for %s from %s\n", n, modelID, c.Cache.Path)
	return err
}

func init() {
	addFormatFlag(cacheStatsCmd)
	cachePurgeCmd.Flags().String("model", "", "backend/model whose vectors to delete (default: configured embedding model)")

	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
