// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quiz generates comprehension questions about a document with a
// generative language model.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// Generation parameters.
const (
	MaxQuestions   = 3
	maxPromptRunes = 1000
	maxLength      = 300 // prompt plus continuation, in model tokens
	runesPerToken  = 4
	temperature    = 0.8
	topK           = 50
)

// Fallback texts returned in place of questions.
const (
	FallbackFailed   = "Failed to generate questions."
	FallbackUnusable = "Unable to generate questions."
)

// ErrGenerationParse reports that the model ran but produced no usable
// question lines. It is recorded in QuestionSet.Err, never returned.
var ErrGenerationParse = errors.New("generated text contained no questions")

// QuestionSet is the outcome of one generation request.
type QuestionSet struct {
	Questions []string `json:"questions"`

	// Err is set when Questions holds a fallback message instead of
	// generated questions.
	Err error `json:"-"`
}

// Degraded reports whether Questions is a fallback message.
func (s QuestionSet) Degraded() bool { return s.Err != nil }

// Generator prompts a generative model for comprehension questions.
type Generator struct {
	model model.Generator

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed pins the sampling seeds the Generator draws, so a run can be
// reproduced against a provider that honors seeds.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}
}

// WithRand sets the random source seeds are drawn from.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// NewGenerator returns a Generator backed by m. Without an option the seed
// source is randomly seeded.
func NewGenerator(m model.Generator, opts ...Option) *Generator {
	g := &Generator{model: m}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Generate returns up to MaxQuestions questions about document. It never
// fails: model errors and unusable output yield a single fallback message
// with Err set.
func (g *Generator) Generate(ctx context.Context, document string) QuestionSet {
	return g.GenerateWithSeed(ctx, document, g.nextSeed())
}

// GenerateWithSeed is Generate with the sampling seed given explicitly
// instead of drawn from the Generator's source.
func (g *Generator) GenerateWithSeed(ctx context.Context, document string, seed int64) QuestionSet {
	prompt := Prompt(document)

	cfg := model.SamplingConfig{
		MaxLength:   newTokenBudget(prompt),
		DoSample:    true,
		Temperature: temperature,
		TopK:        topK,
		Seed:        seed,
	}
	continuation, err := g.model.Generate(ctx, prompt, cfg)
	if err != nil {
		slog.Warn("question generation failed", "error", err)
		return QuestionSet{
			Questions: []string{FallbackFailed},
			Err:       fmt.Errorf("generating questions: %w", err),
		}
	}

	questions := Parse(prompt + continuation)
	if len(questions) == 0 {
		slog.Warn("question generation produced no usable lines", "chars", len(continuation))
		return QuestionSet{Questions: []string{FallbackUnusable}, Err: ErrGenerationParse}
	}
	slog.Debug("generated questions", "count", len(questions), "seed", cfg.Seed)
	return QuestionSet{Questions: questions}
}

// newTokenBudget returns how many tokens the continuation may use so that
// prompt plus continuation stay within maxLength. The prompt's token count
// is estimated from its length.
func newTokenBudget(prompt string) int {
	return maxLength - (utf8.RuneCountInString(prompt)+runesPerToken-1)/runesPerToken
}

func (g *Generator) nextSeed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int64()
}

// Prompt builds the generation prompt from the first characters of document.
func Prompt(document string) string {
	if r := []rune(document); len(r) > maxPromptRunes {
		document = string(r[:maxPromptRunes])
	}
	return "Generate 3 logic-based and comprehension questions based on the following academic text:\n\n" +
		document + "\n\nQuestions:\n1."
}

// Parse extracts numbered or bulleted lines following the last
// "Questions:" marker in text, stripped of their numbering.
func Parse(text string) []string {
	if i := strings.LastIndex(text, "Questions:"); i >= 0 {
		text = text[i+len("Questions:"):]
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsDigit(first) && first != '-' {
			continue
		}
		q := strings.TrimSpace(strings.TrimLeft(line, "1234567890.- "))
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}
	return out
}
