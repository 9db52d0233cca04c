// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"context"
	"sync"
)

// The Lazy constructors defer building a model until its first call and
// share the result (or the construction error) with every later call.

// LazyQA returns a QA built by init on first use.
func LazyQA(init func() (QA, error)) QA {
	return &lazyQA{get: sync.OnceValues(init)}
}

// LazyEmbedder returns an Embedder built by init on first use.
func LazyEmbedder(init func() (Embedder, error)) Embedder {
	return &lazyEmbedder{get: sync.OnceValues(init)}
}

// LazyGenerator returns a Generator built by init on first use.
func LazyGenerator(init func() (Generator, error)) Generator {
	return &lazyGenerator{get: sync.OnceValues(init)}
}

// LazySummarizer returns a Summarizer built by init on first use.
func LazySummarizer(init func() (Summarizer, error)) Summarizer {
	return &lazySummarizer{get: sync.OnceValues(init)}
}

type lazyQA struct{ get func() (QA, error) }

func (l *lazyQA) Answer(ctx context.Context, question, passage string) (Answer, error) {
	m, err := l.get()
	if err != nil {
		return Answer{}, err
	}
	return m.Answer(ctx, question, passage)
}

type lazyEmbedder struct{ get func() (Embedder, error) }

func (l *lazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m, err := l.get()
	if err != nil {
		return nil, err
	}
	return m.Embed(ctx, text)
}

type lazyGenerator struct{ get func() (Generator, error) }

func (l *lazyGenerator) Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error) {
	m, err := l.get()
	if err != nil {
		return "", err
	}
	return m.Generate(ctx, prompt, cfg)
}

type lazySummarizer struct{ get func() (Summarizer, error) }

func (l *lazySummarizer) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	m, err := l.get()
	if err != nil {
		return "", err
	}
	return m.Summarize(ctx, text, minLen, maxLen)
}
