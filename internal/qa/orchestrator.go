// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa answers questions about a document and grades answers against
// it. The Orchestrator pairs an extractive QA model with a Selector that
// finds the supporting sentence; the Evaluator compares a reader's answer
// with the one the model extracts.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// inputError rejects a call before any model runs. It matches
// model.ErrInference so callers that only distinguish model failures still
// see it as one.
type inputError string

func (e inputError) Error() string { return string(e) }

func (e inputError) Is(target error) bool { return target == model.ErrInference }

// Input errors.
var (
	ErrEmptyContext  error = inputError("qa: context is empty")
	ErrEmptyQuestion error = inputError("qa: question is empty")
)

// Result is the answer to one question together with its evidence.
type Result struct {
	Question      string        `json:"question" yaml:"question"`
	Answer        string        `json:"answer" yaml:"answer"`
	Confidence    float64       `json:"confidence" yaml:"confidence"`
	Justification Justification `json:"justification" yaml:"justification"`
}

// Orchestrator answers questions against a context passage.
type Orchestrator struct {
	qa       model.QA
	selector *Selector
}

// NewOrchestrator wires an extractive QA model to a justification selector.
func NewOrchestrator(qa model.QA, selector *Selector) *Orchestrator {
	return &Orchestrator{qa: qa, selector: selector}
}

// Answer extracts an answer span for question from context and selects the
// context sentence that supports it. Model failures are returned unchanged
// in kind: errors.Is(err, model.ErrInference) holds for all of them.
func (o *Orchestrator) Answer(ctx context.Context, question, context string) (Result, error) {
	if strings.TrimSpace(context) == "" {
		return Result{}, ErrEmptyContext
	}
	if strings.TrimSpace(question) == "" {
		return Result{}, ErrEmptyQuestion
	}

	ans, err := o.qa.Answer(ctx, question, context)
	if err != nil {
		return Result{}, fmt.Errorf("answering question: %w", err)
	}

	just, err := o.selector.Select(ctx, ans.Text, context)
	if err != nil {
		return Result{}, fmt.Errorf("selecting justification: %w", err)
	}

	slog.Debug("answered question",
		"answer", ans.Text, "confidence", ans.Score,
		"justified", just.Found(), "justification_score", just.Score,
	)

	return Result{
		Question:      question,
		Answer:        ans.Text,
		Confidence:    clamp01(ans.Score),
		Justification: just,
	}, nil
}
