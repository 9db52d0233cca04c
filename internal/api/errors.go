// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/extract"
	"github.com/pdiddy/neuroscholar/internal/model"
	"github.com/pdiddy/neuroscholar/internal/qa"
	"github.com/pdiddy/neuroscholar/internal/session"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 error.
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewNotFoundError creates a 404 error for resource id.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// FromError maps the pipeline error taxonomy to an APIError.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	out := &APIError{Message: assistant.Message(err), Details: err.Error()}
	switch {
	case errors.Is(err, qa.ErrEmptyContext), errors.Is(err, qa.ErrEmptyQuestion):
		out.Status, out.Code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, assistant.ErrNoDocument):
		out.Status, out.Code = http.StatusConflict, "NO_DOCUMENT"
	case errors.Is(err, extract.ErrExtraction):
		out.Status, out.Code = http.StatusUnprocessableEntity, "EXTRACTION_ERROR"
	case errors.Is(err, context.DeadlineExceeded):
		// Backends wrap timeouts as inference errors.
		out.Status, out.Code = http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, model.ErrInference):
		out.Status, out.Code = http.StatusBadGateway, "INFERENCE_ERROR"
	case errors.Is(err, session.ErrTooManySessions):
		out.Status, out.Code = http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	default:
		out.Status, out.Code = http.StatusInternalServerError, "INTERNAL_ERROR"
		out.Message = "An unexpected error occurred"
	}
	return out
}

// ErrorHandler renders handler errors as APIError JSON.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	} else {
		apiErr = FromError(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method, "path", c.Path(),
			"status", apiErr.Status, "error", err,
		)
	}
	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		slog.Error("writing error response", "error", err)
	}
}
