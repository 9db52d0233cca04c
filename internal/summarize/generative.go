// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/neuroscholar/internal/model"
)

// GenerativeModel serves model.Summarizer on top of a text generator by
// prompting it for a summary. It lets chat-style backends stand in for a
// dedicated summarization model.
type GenerativeModel struct {
	Generator model.Generator
}

var _ model.Summarizer = (*GenerativeModel)(nil)

// Summarize asks the generator for a summary of roughly minLen to maxLen
// words, decoding greedily.
func (g *GenerativeModel) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the following academic text in %d to %d words. Reply with the summary only.\n\n%s\n\nSummary:",
		minLen, maxLen, text,
	)
	out, err := g.Generator.Generate(ctx, prompt, model.SamplingConfig{MaxLength: maxLen * 2})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &model.InferenceError{Op: "summarize", Backend: "generative", Err: fmt.Errorf("empty summary")}
	}
	return out, nil
}
