// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"errors"
	"fmt"
)

// ErrInference matches every failure of an underlying model call: transport,
// upstream status, malformed response, or empty output.
var ErrInference = errors.New("model inference failed")

// InferenceError records which backend operation failed.
type InferenceError struct {
	// Op is the model role, e.g. "qa", "embed", "generate", "summarize".
	Op string

	// Backend names the provider, e.g. "hf" or "ollama".
	Backend string

	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Is makes every InferenceError match ErrInference.
func (e *InferenceError) Is(target error) bool { return target == ErrInference }

// Wrap returns err as an *InferenceError for backend and op. A nil err stays nil.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InferenceError
	if errors.As(err, &ie) {
		return err
	}
	return &InferenceError{Op: op, Backend: backend, Err: err}
}

// Errorf formats a new *InferenceError for backend and op.
func Errorf(backend, op, format string, args ...any) error {
	return &InferenceError{Op: op, Backend: backend, Err: fmt.Errorf(format, args...)}
}
