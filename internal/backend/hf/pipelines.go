// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hf

import (
	"context"
	"encoding/json"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// QA runs a question-answering pipeline.
type QA struct {
	Client *Client
	Model  string
}

// NewQA returns a QA pipeline for modelID (default DefaultQAModel).
func NewQA(c *Client, modelID string) *QA {
	if modelID == "" {
		modelID = DefaultQAModel
	}
	return &QA{Client: c, Model: modelID}
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

// Answer implements model.QA.
func (q *QA) Answer(ctx context.Context, question, passage string) (model.Answer, error) {
	var ans model.Answer
	req := qaRequest{Inputs: qaInputs{Question: question, Context: passage}}
	if err := q.Client.post(ctx, "qa", q.Model, req, &ans); err != nil {
		return model.Answer{}, err
	}
	return ans, nil
}

// Embedder runs a feature-extraction pipeline.
type Embedder struct {
	Client *Client
	Model  string
}

// NewEmbedder returns a feature-extraction pipeline for modelID (default DefaultEmbeddingModel).
func NewEmbedder(c *Client, modelID string) *Embedder {
	if modelID == "" {
		modelID = DefaultEmbeddingModel
	}
	return &Embedder{Client: c, Model: modelID}
}

type inputsRequest struct {
	Inputs     string `json:"inputs"`
	Parameters any    `json:"parameters,omitempty"`
}

// Embed implements model.Embedder. Sentence-transformers models answer with a
// pooled vector; plain encoders answer with one vector per token, which is
// mean-pooled here.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var raw json.RawMessage
	if err := e.Client.post(ctx, "embed", e.Model, inputsRequest{Inputs: text}, &raw); err != nil {
		return nil, err
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
		return vec, nil
	}
	var rows [][]float32
	if err := json.Unmarshal(raw, &rows); err == nil && len(rows) > 0 {
		if pooled := model.MeanPool(rows); len(pooled) > 0 {
			return pooled, nil
		}
	}
	var batch [][][]float32
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) > 0 {
		if pooled := model.MeanPool(batch[0]); len(pooled) > 0 {
			return pooled, nil
		}
	}
	return nil, model.Errorf(backendName, "embed", "unrecognized embedding shape from %s", e.Model)
}

// Generator runs a text-generation pipeline.
type Generator struct {
	Client *Client
	Model  string
}

// NewGenerator returns a text-generation pipeline for modelID (default DefaultGenerationModel).
func NewGenerator(c *Client, modelID string) *Generator {
	if modelID == "" {
		modelID = DefaultGenerationModel
	}
	return &Generator{Client: c, Model: modelID}
}

type generationParams struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	DoSample       bool    `json:"do_sample"`
	TopK           int     `json:"top_k,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// Generate implements model.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg model.SamplingConfig) (string, error) {
	params := generationParams{
		MaxNewTokens: cfg.MaxLength,
		DoSample:     cfg.DoSample,
	}
	if cfg.DoSample {
		params.TopK = cfg.TopK
		params.Temperature = cfg.Temperature
		seed := cfg.Seed
		params.Seed = &seed
	}

	var out []generatedText
	if err := g.Client.post(ctx, "generate", g.Model, inputsRequest{Inputs: prompt, Parameters: params}, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", model.Errorf(backendName, "generate", "%s returned no generations", g.Model)
	}
	return out[0].GeneratedText, nil
}

// Summarizer runs a summarization pipeline.
type Summarizer struct {
	Client *Client
	Model  string
}

// NewSummarizer returns a summarization pipeline for modelID (default DefaultSummarizationModel).
func NewSummarizer(c *Client, modelID string) *Summarizer {
	if modelID == "" {
		modelID = DefaultSummarizationModel
	}
	return &Summarizer{Client: c, Model: modelID}
}

type summarizationParams struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type summaryText struct {
	SummaryText string `json:"summary_text"`
}

// Summarize implements model.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	req := inputsRequest{
		Inputs:     text,
		Parameters: summarizationParams{MinLength: minLen, MaxLength: maxLen, DoSample: false},
	}

	var out []summaryText
	if err := s.Client.post(ctx, "summarize", s.Model, req, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", model.Errorf(backendName, "summarize", "%s returned an empty summary", s.Model)
	}
	return out[0].SummaryText, nil
}

// Interface checks.
var (
	_ model.QA         = (*QA)(nil)
	_ model.Embedder   = (*Embedder)(nil)
	_ model.Generator  = (*Generator)(nil)
	_ model.Summarizer = (*Summarizer)(nil)
)
