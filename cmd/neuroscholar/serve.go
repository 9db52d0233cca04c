// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neuroscholar/internal/api"
	"github.com/pdiddy/neuroscholar/internal/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	Long: `Serve exposes document upload, summaries, question answering, question
generation, and answer evaluation as a JSON API. Each uploaded document gets
its own session; idle sessions expire after server.session_ttl.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := newServices(cfg, loadedSecrets)
	defer svc.Close()

	sessions := session.NewManager(cfg.Server.SessionTTL, cfg.Server.MaxSessions)
	sessions.Start(ctx)

	h := api.NewHandler(svc.Assistant(ctx), sessions, cfg.Server.MaxUploadBytes, version)
	e := api.NewServer(h, cfg.Server)

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr)
		errc <- e.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", cfg.Server.Addr, err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "sessions", sessions.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")

	rootCmd.AddCommand(serveCmd)
}
