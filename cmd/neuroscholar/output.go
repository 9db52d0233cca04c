package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/quiz"
	"github.com/pdiddy/neuroscholar/internal/session"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeOutput renders v as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatText, "":
		return text(w)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", formatText, "output format: text, json, or yaml")
}

// openDocument builds the pipeline and loads path into a fresh session.
func openDocument(ctx context.Context, path string, opts ...quiz.Option) (*assistant.Assistant, *session.Session, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	svc := newServices(appConfig, loadedSecrets)
	a := svc.Assistant(ctx, opts...)
	sess := session.New("cli")
	if _, err := a.Load(ctx, sess, filepath.Base(path), data, ""); err != nil {
		svc.Close()
		return nil, nil, nil, userError(err)
	}
	return a, sess, func() { svc.Close() }, nil
}

// userError renders err for a terminal, keeping the wrapped chain for
// errors.Is.
func userError(err error) error {
	return &messageError{msg: assistant.Message(err), err: err}
}

type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }
