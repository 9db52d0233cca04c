// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// CorrectThreshold is the fixed similarity above which an answer is graded
// Correct. It is policy, not a tunable.
const CorrectThreshold = 0.7

// Verdict is the grade given to a reader's answer.
type Verdict int

// Verdicts.
const (
	NeedsImprovement Verdict = iota
	Correct
)

func (v Verdict) String() string {
	if v == Correct {
		return "correct"
	}
	return "needs_improvement"
}

// MarshalText renders the verdict as its string form in JSON and YAML.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a verdict written by MarshalText.
func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "correct":
		*v = Correct
	case "needs_improvement":
		*v = NeedsImprovement
	default:
		return fmt.Errorf("unknown verdict %q", b)
	}
	return nil
}

// Evaluation grades one answer against the document.
type Evaluation struct {
	Verdict        Verdict `json:"verdict" yaml:"verdict"`
	ExpectedAnswer string  `json:"expected_answer" yaml:"expected_answer"`
	Similarity     float64 `json:"similarity" yaml:"similarity"`
}

// Feedback renders the user-facing message for the evaluation.
func (e Evaluation) Feedback() string {
	if e.Verdict == Correct {
		return "✅ Correct! Your answer aligns well with the document."
	}
	return fmt.Sprintf("❌ Not quite. Expected something like: '%s'. Consider reviewing that section again.", e.ExpectedAnswer)
}

// Evaluator grades free-text answers by comparing them with the answer an
// extractive QA model finds in the document.
type Evaluator struct {
	qa    model.QA
	embed model.Embedder
}

// NewEvaluator returns an Evaluator backed by qa and embed.
func NewEvaluator(qa model.QA, embed model.Embedder) *Evaluator {
	return &Evaluator{qa: qa, embed: embed}
}

// Evaluate grades userAnswer to question against document. A blank
// userAnswer is graded NeedsImprovement with similarity 0 without being
// embedded.
func (e *Evaluator) Evaluate(ctx context.Context, document, question, userAnswer string) (Evaluation, error) {
	if strings.TrimSpace(document) == "" {
		return Evaluation{}, ErrEmptyContext
	}
	if strings.TrimSpace(question) == "" {
		return Evaluation{}, ErrEmptyQuestion
	}

	expected, err := e.qa.Answer(ctx, question, document)
	if err != nil {
		return Evaluation{}, fmt.Errorf("finding expected answer: %w", err)
	}
	result := Evaluation{ExpectedAnswer: expected.Text}
	if strings.TrimSpace(userAnswer) == "" {
		return result, nil
	}

	want, err := e.embed.Embed(ctx, expected.Text)
	if err != nil {
		return Evaluation{}, fmt.Errorf("embedding expected answer: %w", err)
	}
	got, err := e.embed.Embed(ctx, userAnswer)
	if err != nil {
		return Evaluation{}, fmt.Errorf("embedding user answer: %w", err)
	}

	result.Similarity = clamp01(model.CosineSimilarity(want, got))
	if result.Similarity > CorrectThreshold {
		result.Verdict = Correct
	}
	return result, nil
}
