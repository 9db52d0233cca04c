// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// Justification is the context sentence that best supports an answer.
type Justification struct {
	// Sentence is the trimmed sentence as it appears in the context, or
	// empty when no sentence scored above zero.
	Sentence string `json:"sentence" yaml:"sentence"`

	// Highlighted is Sentence with the first case-insensitive occurrence of
	// the answer wrapped in "**".
	Highlighted string `json:"highlighted" yaml:"highlighted"`

	Score float64 `json:"score" yaml:"score"`
}

// Found reports whether a supporting sentence was selected.
func (j Justification) Found() bool { return j.Sentence != "" }

// Selector picks the justification sentence for an answer by embedding
// similarity.
type Selector struct {
	embed model.Embedder
}

// NewSelector returns a Selector backed by embed.
func NewSelector(embed model.Embedder) *Selector {
	return &Selector{embed: embed}
}

// Select embeds answer and every sentence of context and returns the most
// similar sentence. Sentences are split on "." only; abbreviations and
// decimals split too.
func (s *Selector) Select(ctx context.Context, answer, context string) (Justification, error) {
	target, err := s.embed.Embed(ctx, answer)
	if err != nil {
		return Justification{}, fmt.Errorf("embedding answer: %w", err)
	}

	var (
		best      string
		bestScore float64
	)
	for _, sent := range SplitSentences(context) {
		vec, err := s.embed.Embed(ctx, sent)
		if err != nil {
			return Justification{}, fmt.Errorf("embedding sentence: %w", err)
		}
		if score := model.CosineSimilarity(target, vec); score > bestScore {
			best, bestScore = sent, score
		}
	}
	if best == "" {
		return Justification{}, nil
	}

	return Justification{
		Sentence:    best,
		Highlighted: highlight(best, answer),
		Score:       clamp01(bestScore),
	}, nil
}

// SplitSentences splits text on periods and returns the trimmed, non-empty
// pieces in order.
func SplitSentences(text string) []string {
	var out []string
	for _, piece := range strings.Split(text, ".") {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func highlight(sentence, answer string) string {
	start, end := indexFold(sentence, answer)
	if start < 0 {
		return sentence
	}
	return sentence[:start] + "**" + sentence[start:end] + "**" + sentence[end:]
}

// indexFold returns the byte span of the first case-insensitive occurrence
// of sub in s, or -1, -1. An empty sub never matches.
func indexFold(s, sub string) (int, int) {
	if sub == "" {
		return -1, -1
	}
	for i := range s {
		j, k := i, 0
		for k < len(sub) && j < len(s) {
			r1, n1 := utf8.DecodeRuneInString(s[j:])
			r2, n2 := utf8.DecodeRuneInString(sub[k:])
			if unicode.ToLower(r1) != unicode.ToLower(r2) {
				break
			}
			j += n1
			k += n2
		}
		if k == len(sub) {
			return i, j
		}
	}
	return -1, -1
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
