// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the assistant over HTTP. Each session holds one
// document; clients upload it, then summarize, ask, generate questions,
// and submit answers against the session.
package api

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/neuroscholar/pkg/types"
)

// DefaultMaxUploadBytes bounds one upload when the config leaves it unset.
const DefaultMaxUploadBytes = 32 << 20

// NewServer returns an echo instance with middleware and routes installed.
func NewServer(h *Handler, cfg types.ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method, "uri", v.URI,
				"status", v.Status, "latency", v.Latency,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Multipart framing needs headroom above the file itself.
	limit := cfg.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", limit/1024+64)))

	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HandleHealth)

	g := e.Group("/api/sessions")
	g.POST("", h.HandleCreateSession)
	g.PUT("/:id/document", h.HandleReplaceDocument)
	g.DELETE("/:id", h.HandleDeleteSession)
	g.GET("/:id/summary", h.HandleSummary)
	g.POST("/:id/ask", h.HandleAsk)
	g.GET("/:id/history", h.HandleHistory)
	g.POST("/:id/questions", h.HandleQuestions)
	g.POST("/:id/evaluate", h.HandleEvaluate)
}
