// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize produces bounded-length abstractive summaries of a
// document.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// Summary bounds.
const (
	DefaultMaxWords = 150
	maxInputWords   = 600
	minLength       = 50
	maxLength       = 200
	ellipsis        = "..."
)

// Summarizer condenses documents with an abstractive summarization model.
type Summarizer struct {
	model model.Summarizer
}

// New returns a Summarizer backed by m.
func New(m model.Summarizer) *Summarizer {
	return &Summarizer{model: m}
}

// Summarize summarizes the first words of document and cuts the result to
// maxWords words, appending "..." when it had to cut. maxWords <= 0 means
// DefaultMaxWords.
func (s *Summarizer) Summarize(ctx context.Context, document string, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	words := strings.Fields(document)
	if len(words) > maxInputWords {
		document = strings.Join(words[:maxInputWords], " ")
	}

	summary, err := s.model.Summarize(ctx, document, minLength, maxLength)
	if err != nil {
		return "", fmt.Errorf("summarizing document: %w", err)
	}

	out := strings.Fields(summary)
	slog.Debug("summarized document", "input_words", len(words), "summary_words", len(out))
	if len(out) > maxWords {
		return strings.Join(out[:maxWords], " ") + ellipsis, nil
	}
	return summary, nil
}
