// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model defines the contracts of the pretrained model services the
// assistant composes: extractive QA, sentence embeddings, text generation,
// and abstractive summarization. Concrete providers live under
// internal/backend and are injected at construction time.
package model

import "context"

// Answer is the output of an extractive QA model: a span of the context and
// the model's confidence in it.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`

	// Start and End are character offsets of the span when the provider
	// reports them; both are zero otherwise.
	Start int `json:"start"`
	End   int `json:"end"`
}

// QA answers a question by selecting a span from a context passage.
type QA interface {
	Answer(ctx context.Context, question, context string) (Answer, error)
}

// Embedder maps text to a fixed-size dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SamplingConfig controls text generation.
type SamplingConfig struct {
	// MaxLength bounds the number of generated tokens.
	MaxLength int

	// DoSample enables stochastic decoding. When false, providers decode
	// greedily and Temperature, TopK and Seed are ignored.
	DoSample bool

	Temperature float64
	TopK        int

	// Seed pins the provider's sampler when it supports one.
	Seed int64
}

// Generator produces a continuation of a prompt. Implementations return only
// the continuation, never the prompt itself.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
}

// Summarizer produces an abstractive summary bounded by minLen and maxLen
// model tokens, decoded deterministically.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}
