// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/backend/claude"
	"github.com/pdiddy/neuroscholar/internal/backend/gemini"
	"github.com/pdiddy/neuroscholar/internal/backend/hf"
	"github.com/pdiddy/neuroscholar/internal/backend/ollama"
	"github.com/pdiddy/neuroscholar/internal/backend/openai"
	"github.com/pdiddy/neuroscholar/internal/container"
	"github.com/pdiddy/neuroscholar/internal/embedcache"
	"github.com/pdiddy/neuroscholar/internal/extract"
	"github.com/pdiddy/neuroscholar/internal/model"
	"github.com/pdiddy/neuroscholar/internal/qa"
	"github.com/pdiddy/neuroscholar/internal/quiz"
	"github.com/pdiddy/neuroscholar/internal/secrets"
	"github.com/pdiddy/neuroscholar/internal/summarize"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

// healthTimeout bounds the startup health check of the PDF parse service.
const healthTimeout = 5 * time.Second

// services builds the model backends named in the config. Every backend is
// constructed on first use and shared afterwards, so a command only pays
// for (and only needs credentials for) the roles it exercises.
type services struct {
	cfg     types.Config
	secrets secrets.Set

	hfClient func() *hf.Client

	QA         model.QA
	Embedder   model.Embedder
	Generator  model.Generator
	Summarizer model.Summarizer

	mu      sync.Mutex
	closers []io.Closer
}

func newServices(cfg types.Config, sec secrets.Set) *services {
	s := &services{cfg: cfg, secrets: sec}
	s.hfClient = sync.OnceValue(func() *hf.Client {
		return hf.NewClient(cfg.HF.BaseURL, sec.Resolve(secrets.HFAPIKey, cfg.HF.APIKey), cfg.HTTP.Timeout, cfg.HTTP.MaxRetries)
	})
	s.QA = model.LazyQA(s.newQA)
	s.Embedder = model.LazyEmbedder(s.newEmbedder)
	s.Generator = model.LazyGenerator(s.newGenerator)
	s.Summarizer = model.LazySummarizer(s.newSummarizer)
	return s
}

// Assistant composes the pipeline over the lazily built models.
func (s *services) Assistant(ctx context.Context, opts ...quiz.Option) *assistant.Assistant {
	return assistant.New(assistant.Deps{
		Extractor:  s.Extractor(ctx),
		Summarizer: summarize.New(s.Summarizer),
		Answerer:   qa.NewOrchestrator(s.QA, qa.NewSelector(s.Embedder)),
		Grader:     qa.NewEvaluator(s.QA, s.Embedder),
		Questions:  quiz.NewGenerator(s.Generator, opts...),
		MaxWords:   s.cfg.Summarization.MaxWords,
	})
}

// Extractor returns a text extractor whose PDF converter follows
// extraction.pdf_backend. When the converter is unavailable, PDFs fail at
// extraction time with the reason logged here.
func (s *services) Extractor(ctx context.Context) *extract.Extractor {
	switch s.cfg.Extraction.PDFBackend {
	case types.PDFService:
		conv := extract.NewServiceConverter(s.cfg.Extraction.ServiceURL, s.cfg.HTTP.Timeout, s.cfg.HTTP.MaxRetries)
		hctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		if !conv.Healthy(hctx) {
			slog.Warn("PDF parse service is not healthy; PDF uploads may fail", "url", conv.URL)
		}
		return extract.New(conv)
	case types.PDFMarkitdown, "":
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			slog.Warn("PDF extraction disabled", "error", err)
			return extract.New(nil)
		}
		conv, err := extract.NewMarkitdownConverter(ctx, rt)
		if err != nil {
			slog.Warn("PDF extraction disabled", "error", err)
			return extract.New(nil)
		}
		return extract.New(conv)
	default:
		slog.Warn("PDF extraction disabled", "error", fmt.Sprintf("unknown pdf_backend %q", s.cfg.Extraction.PDFBackend))
		return extract.New(nil)
	}
}

// Close releases resources held by constructed backends.
func (s *services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, c := range s.closers {
		if cache, ok := c.(*embedcache.Cache); ok {
			st := cache.Stats()
			slog.Debug("embedding cache", "hits", st.Hits, "misses", st.Misses, "len", st.Len)
		}
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *services) addCloser(c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, c)
}

func unsupported(role string, b types.Backend) error {
	return fmt.Errorf("%s backend %q not supported for this role", role, b)
}

func (s *services) newQA() (model.QA, error) {
	c := s.cfg.QA
	switch c.Backend {
	case types.BackendHF, "":
		return hf.NewQA(s.hfClient(), orDefault(c.Model, hf.DefaultQAModel)), nil
	}
	return nil, unsupported("qa", c.Backend)
}

func (s *services) newEmbedder() (model.Embedder, error) {
	c := s.cfg.Embedding
	var inner model.Embedder
	modelID := embeddingModel(c)
	switch c.Backend {
	case types.BackendHF, "":
		inner = hf.NewEmbedder(s.hfClient(), modelID)
	case types.BackendOllama:
		inner = ollama.New(s.cfg.Ollama.BaseURL, modelID, s.cfg.HTTP.Timeout, s.cfg.HTTP.MaxRetries)
	case types.BackendOpenAI:
		cli, err := s.openAI(modelID)
		if err != nil {
			return nil, err
		}
		inner = cli
	case types.BackendGemini:
		cli, err := s.gemini(modelID)
		if err != nil {
			return nil, err
		}
		inner = cli
	default:
		return nil, unsupported("embedding", c.Backend)
	}

	if !c.Cache.Enabled {
		return inner, nil
	}
	opts := []embedcache.Option{embedcache.WithSize(c.Cache.Size)}
	if c.Cache.Path != "" {
		store, err := embedcache.OpenStore(c.Cache.Path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, embedcache.WithStore(store))
	}
	cache, err := embedcache.New(inner, cacheModelID(c), opts...)
	if err != nil {
		return nil, err
	}
	s.addCloser(cache)
	return cache, nil
}

func (s *services) newGenerator() (model.Generator, error) {
	return s.generatorFor("generation", s.cfg.Generation, hf.DefaultGenerationModel)
}

func (s *services) newSummarizer() (model.Summarizer, error) {
	c := s.cfg.Summarization
	if c.Backend == types.BackendHF || c.Backend == "" {
		return hf.NewSummarizer(s.hfClient(), orDefault(c.Model, hf.DefaultSummarizationModel)), nil
	}
	gen, err := s.generatorFor("summarization", c.ModelConfig, "")
	if err != nil {
		return nil, err
	}
	return &summarize.GenerativeModel{Generator: gen}, nil
}

// generatorFor builds a text generator for role. hfDefault is the model
// used for the hf backend when none is configured.
func (s *services) generatorFor(role string, c types.ModelConfig, hfDefault string) (model.Generator, error) {
	switch c.Backend {
	case types.BackendHF, "":
		if hfDefault == "" {
			return nil, unsupported(role, c.Backend)
		}
		return hf.NewGenerator(s.hfClient(), orDefault(c.Model, hfDefault)), nil
	case types.BackendOllama:
		return ollama.New(s.cfg.Ollama.BaseURL, orDefault(c.Model, ollama.DefaultGenerationModel), s.cfg.HTTP.Timeout, s.cfg.HTTP.MaxRetries), nil
	case types.BackendOpenAI:
		return s.openAI(orDefault(c.Model, openai.DefaultGenerationModel))
	case types.BackendGemini:
		return s.gemini(orDefault(c.Model, gemini.DefaultGenerationModel))
	case types.BackendClaude:
		key := s.secrets.Resolve(secrets.AnthropicAPIKey, s.cfg.Claude.APIKey)
		if key == "" {
			return nil, fmt.Errorf("Claude API key not set: configure claude.api_key or .secrets/%s", secrets.AnthropicAPIKey)
		}
		return claude.New(key, s.cfg.Claude.BaseURL, c.Model, s.cfg.HTTP.Timeout, s.cfg.HTTP.MaxRetries), nil
	}
	return nil, unsupported(role, c.Backend)
}

func (s *services) openAI(modelID string) (*openai.Client, error) {
	key := s.secrets.Resolve(secrets.OpenAIAPIKey, s.cfg.OpenAI.APIKey)
	return openai.New(key, s.cfg.OpenAI.BaseURL, modelID, s.cfg.HTTP.Timeout, s.cfg.HTTP.MaxRetries)
}

func (s *services) gemini(modelID string) (*gemini.Client, error) {
	key := s.secrets.Resolve(secrets.GeminiAPIKey, s.cfg.Gemini.APIKey)
	return gemini.New(context.Background(), key, s.cfg.Gemini.BaseURL, modelID)
}

// embeddingModel resolves the configured embedding model, falling back to
// the backend's default.
func embeddingModel(c types.EmbeddingConfig) string {
	switch c.Backend {
	case types.BackendHF, "":
		return orDefault(c.Model, hf.DefaultEmbeddingModel)
	case types.BackendOllama:
		return orDefault(c.Model, ollama.DefaultEmbeddingModel)
	case types.BackendOpenAI:
		return orDefault(c.Model, openai.DefaultEmbeddingModel)
	case types.BackendGemini:
		return orDefault(c.Model, gemini.DefaultEmbeddingModel)
	}
	return c.Model
}

// cacheModelID scopes cached vectors to the backend and model that made them.
func cacheModelID(c types.EmbeddingConfig) string {
	return string(c.Backend) + "/" + embeddingModel(c)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
