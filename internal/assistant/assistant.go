// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant is the orchestration boundary between the reader-facing
// surfaces (CLI and HTTP API) and the document pipeline. It owns session
// updates and turns pipeline errors into messages, leaving a session
// untouched when an interaction fails.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/neuroscholar/internal/extract"
	"github.com/pdiddy/neuroscholar/internal/model"
	"github.com/pdiddy/neuroscholar/internal/qa"
	"github.com/pdiddy/neuroscholar/internal/quiz"
	"github.com/pdiddy/neuroscholar/internal/session"
	"github.com/pdiddy/neuroscholar/internal/summarize"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

// ErrNoDocument is returned by calls made before a document is loaded.
var ErrNoDocument = errors.New("no document loaded")

// Extractor turns an upload into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType, name string) (string, error)
}

// Summarizer condenses a document.
type Summarizer interface {
	Summarize(ctx context.Context, document string, maxWords int) (string, error)
}

// Answerer answers a question against a context passage.
type Answerer interface {
	Answer(ctx context.Context, question, context string) (qa.Result, error)
}

// Grader grades an answer against a document.
type Grader interface {
	Evaluate(ctx context.Context, document, question, userAnswer string) (qa.Evaluation, error)
}

// QuestionGenerator produces comprehension questions.
type QuestionGenerator interface {
	Generate(ctx context.Context, document string) quiz.QuestionSet
	GenerateWithSeed(ctx context.Context, document string, seed int64) quiz.QuestionSet
}

// Deps are the pipeline components an Assistant composes.
type Deps struct {
	Extractor  Extractor
	Summarizer Summarizer
	Answerer   Answerer
	Grader     Grader
	Questions  QuestionGenerator

	// MaxWords is the summary length used when a caller passes 0.
	MaxWords int
}

// Assistant runs reader interactions against sessions.
type Assistant struct {
	deps Deps
}

// New returns an Assistant over deps.
func New(deps Deps) *Assistant {
	if deps.MaxWords <= 0 {
		deps.MaxWords = summarize.DefaultMaxWords
	}
	return &Assistant{deps: deps}
}

// Load extracts the text of data and makes it the session's document. On
// failure the session keeps its previous document and state.
func (a *Assistant) Load(ctx context.Context, sess *session.Session, name string, data []byte, mimeType string) (types.Document, error) {
	text, err := a.deps.Extractor.Extract(ctx, data, mimeType, name)
	if err != nil {
		return types.Document{}, err
	}
	doc := types.NewDocument(name, text)
	sess.Load(doc)
	slog.Info("document loaded", "session", sess.ID, "name", name, "words", doc.WordCount())
	return doc, nil
}

// Summary returns the session document's summary. Summaries at the default
// length are computed once per document and cached in the session.
func (a *Assistant) Summary(ctx context.Context, sess *session.Session, maxWords int) (string, error) {
	doc, err := document(sess)
	if err != nil {
		return "", err
	}
	if maxWords <= 0 {
		maxWords = a.deps.MaxWords
	}
	cacheable := maxWords == a.deps.MaxWords
	if cacheable {
		if s := sess.Summary(); s != "" {
			return s, nil
		}
	}

	summary, err := a.deps.Summarizer.Summarize(ctx, doc.Text, maxWords)
	if err != nil {
		return "", err
	}
	if cacheable {
		sess.SetSummary(doc, summary)
	}
	return summary, nil
}

// Ask answers question about the session document and records the exchange
// in the session history. A failed question leaves the history unchanged.
func (a *Assistant) Ask(ctx context.Context, sess *session.Session, question string) (qa.Result, error) {
	doc, err := document(sess)
	if err != nil {
		return qa.Result{}, err
	}
	res, err := a.deps.Answerer.Answer(ctx, question, doc.Text)
	if err != nil {
		return qa.Result{}, err
	}
	sess.Append(question, res.Format())
	return res, nil
}

// GenerateQuestions generates comprehension questions and stores them in
// the session. A non-nil seed pins the sampler. It only fails when no
// document is loaded; generation problems are reported through the set.
func (a *Assistant) GenerateQuestions(ctx context.Context, sess *session.Session, seed *int64) (quiz.QuestionSet, error) {
	doc, err := document(sess)
	if err != nil {
		return quiz.QuestionSet{}, err
	}
	var set quiz.QuestionSet
	if seed != nil {
		set = a.deps.Questions.GenerateWithSeed(ctx, doc.Text, *seed)
	} else {
		set = a.deps.Questions.Generate(ctx, doc.Text)
	}
	if !set.Degraded() {
		sess.SetQuestions(set.Questions)
	}
	return set, nil
}

// Response is a reader's answer to one question.
type Response struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Grade is the evaluation of one Response. Err is set instead of
// Evaluation when grading that response failed.
type Grade struct {
	Question   string        `json:"question" yaml:"question"`
	Answer     string        `json:"answer" yaml:"answer"`
	Evaluation qa.Evaluation `json:"evaluation" yaml:"evaluation"`
	Err        error         `json:"-" yaml:"-"`
}

// Evaluate grades every response with a non-blank answer. Blank answers
// are skipped. A failure on one response is recorded in its Grade and does
// not stop the others.
func (a *Assistant) Evaluate(ctx context.Context, sess *session.Session, responses []Response) ([]Grade, error) {
	doc, err := document(sess)
	if err != nil {
		return nil, err
	}

	grades := make([]Grade, 0, len(responses))
	for _, r := range responses {
		if strings.TrimSpace(r.Answer) == "" {
			continue
		}
		ev, err := a.deps.Grader.Evaluate(ctx, doc.Text, r.Question, r.Answer)
		if err != nil {
			slog.Warn("evaluation failed", "session", sess.ID, "question", r.Question, "error", err)
		}
		grades = append(grades, Grade{Question: r.Question, Answer: r.Answer, Evaluation: ev, Err: err})
	}
	return grades, nil
}

func document(sess *session.Session) (types.Document, error) {
	doc, ok := sess.Document()
	if !ok {
		return types.Document{}, ErrNoDocument
	}
	return doc, nil
}

// Message renders err as text for a reader.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoDocument):
		return "Upload a PDF or text document first."
	case errors.Is(err, extract.ErrExtraction):
		return fmt.Sprintf("Could not read the document: %s", cause(err))
	case errors.Is(err, qa.ErrEmptyContext):
		return "The document contains no text to answer from."
	case errors.Is(err, qa.ErrEmptyQuestion):
		return "Please enter a question."
	case errors.Is(err, quiz.ErrGenerationParse):
		return "The model did not produce usable questions. Try generating again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The model took too long to respond. Please try again."
	case errors.Is(err, model.ErrInference):
		return fmt.Sprintf("The model service failed: %s", cause(err))
	}
	return err.Error()
}

// cause returns the innermost message of a taxonomy error.
func cause(err error) string {
	var ee *extract.Error
	if errors.As(err, &ee) {
		return ee.Err.Error()
	}
	var ie *model.InferenceError
	if errors.As(err, &ie) {
		return ie.Err.Error()
	}
	return err.Error()
}
