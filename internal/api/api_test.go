// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/extract"
	"github.com/pdiddy/neuroscholar/internal/model"
	"github.com/pdiddy/neuroscholar/internal/qa"
	"github.com/pdiddy/neuroscholar/internal/quiz"
	"github.com/pdiddy/neuroscholar/internal/session"
	"github.com/pdiddy/neuroscholar/internal/summarize"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

const waterDoc = "The sky is blue. Water boils at 100 degrees."

type wordEmbedder struct{}

// Embed hashes each word into one of 64 buckets.
func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		h := 0
		for _, r := range w {
			h = (h*31 + int(r)) % 64
		}
		vec[h]++
	}
	return vec, nil
}

type tableQA struct {
	answers map[string]string
	err     error
}

func (q *tableQA) Answer(_ context.Context, question, _ string) (model.Answer, error) {
	if q.err != nil {
		return model.Answer{}, q.err
	}
	return model.Answer{Text: q.answers[question], Score: 0.75}, nil
}

type stubGen struct {
	out string
	err error
}

func (s *stubGen) Generate(context.Context, string, model.SamplingConfig) (string, error) {
	return s.out, s.err
}

type stubSummarizer struct{ out string }

func (s stubSummarizer) Summarize(context.Context, string, int, int) (string, error) {
	return s.out, nil
}

type testServer struct {
	e        *echo.Echo
	qa       *tableQA
	gen      *stubGen
	sessions *session.Manager
}

func newTestServer(t *testing.T, maxSessions int) *testServer {
	t.Helper()
	ts := &testServer{
		qa: &tableQA{answers: map[string]string{
			"At what temperature does water boil?": "100 degrees",
			"What color is the sky?":               "blue",
		}},
		gen:      &stubGen{out: " What color is the sky?\n2. When does water boil?"},
		sessions: session.NewManager(time.Hour, maxSessions),
	}
	a := assistant.New(assistant.Deps{
		Extractor:  extract.New(nil),
		Summarizer: summarize.New(stubSummarizer{out: "Water boils at one hundred degrees."}),
		Answerer:   qa.NewOrchestrator(ts.qa, qa.NewSelector(wordEmbedder{})),
		Grader:     qa.NewEvaluator(ts.qa, wordEmbedder{}),
		Questions:  quiz.NewGenerator(ts.gen, quiz.WithSeed(3)),
	})
	ts.e = NewServer(NewHandler(a, ts.sessions, 1<<20, "test"), types.ServerConfig{MaxUploadBytes: 1 << 20})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, method, target, name, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(uploadRequest(t, http.MethodPost, "/api/sessions", "water.txt", "text/plain", []byte(waterDoc)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "water.txt", resp.Document.Name)
	assert.Equal(t, 9, resp.Document.Words)
	return resp.SessionID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateSessionRequiresFile(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestCreateSessionExtractionError(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(uploadRequest(t, http.MethodPost, "/api/sessions", "img.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EXTRACTION_ERROR", decodeError(t, rec).Code)
	assert.Zero(t, ts.sessions.Len())
}

func TestCreateSessionLimit(t *testing.T) {
	ts := newTestServer(t, 1)
	ts.createSession(t)

	rec := ts.do(uploadRequest(t, http.MethodPost, "/api/sessions", "water.txt", "text/plain", []byte(waterDoc)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, 10)

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/nope/ask", `{"question":"q"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Contains(t, apiErr.Message, "nope")
}

func TestAskAndHistory(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/ask", `{"question":"At what temperature does water boil?"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ask struct {
		Answer        string  `json:"answer"`
		Confidence    float64 `json:"confidence"`
		Justification struct {
			Highlighted string `json:"highlighted"`
		} `json:"justification"`
		Formatted string `json:"formatted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ask))
	assert.Equal(t, "100 degrees", ask.Answer)
	assert.Equal(t, "Water boils at **100 degrees**", ask.Justification.Highlighted)
	assert.Contains(t, ask.Formatted, "**Confidence:** 75.0%")

	rec = ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/ask", `{"question":"What color is the sky?"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var hist historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.History, 2)
	assert.Equal(t, "What color is the sky?", hist.History[0].Question)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/history", nil)
	req.Header.Set(echo.HeaderAccept, MIMEMsgpack)
	rec = ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MIMEMsgpack, rec.Header().Get(echo.HeaderContentType))
	var packed historyResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &packed))
	require.Len(t, packed.History, 2)
	assert.Equal(t, hist.History[1].Question, packed.History[1].Question)
}

func TestAskEmptyQuestion(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/ask", `{"question":"  "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestAskInferenceError(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)
	ts.qa.err = model.Errorf("hf", "qa", "status 503")

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/ask", `{"question":"Why?"}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "INFERENCE_ERROR", apiErr.Code)
	assert.Equal(t, "The model service failed: status 503", apiErr.Message)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/history", nil))
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"Water boils at one hundred degrees.","words":6}`, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/summary?max_words=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"Water boils...","words":2}`, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/summary?max_words=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestions(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/questions", `{"seed":42}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"questions":["What color is the sky?","When does water boil?"],"degraded":false}`, rec.Body.String())

	ts.gen.err = model.Errorf("hf", "generate", "down")
	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/questions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp questionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
	assert.Equal(t, []string{quiz.FallbackFailed}, resp.Questions)
	assert.NotEmpty(t, resp.Message)
}

func TestEvaluate(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	body := `{"answers":[
		{"question":"What color is the sky?","answer":"blue"},
		{"question":"At what temperature does water boil?","answer":""}
	]}`
	rec := ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/evaluate", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Grades, 1)
	g := resp.Grades[0]
	assert.Equal(t, "correct", g.Verdict)
	assert.Equal(t, "blue", g.ExpectedAnswer)
	assert.InDelta(t, 1.0, g.Similarity, 1e-6)
	assert.Equal(t, "✅ Correct! Your answer aligns well with the document.", g.Feedback)

	rec = ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/evaluate", `{"answers":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplaceDocumentResetsState(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)
	ts.do(jsonRequest(http.MethodPost, "/api/sessions/"+id+"/ask", `{"question":"What color is the sky?"}`))

	rec := ts.do(uploadRequest(t, http.MethodPut, "/api/sessions/"+id+"/document", "new.md", "text/markdown", []byte("# New\n\nFresh text.")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/history", nil))
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, 10)
	id := ts.createSession(t)

	rec := ts.do(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{qa.ErrEmptyContext, http.StatusBadRequest, "INVALID_INPUT"},
		{assistant.ErrNoDocument, http.StatusConflict, "NO_DOCUMENT"},
		{&extract.Error{Name: "a", Err: errors.New("bad")}, http.StatusUnprocessableEntity, "EXTRACTION_ERROR"},
		{model.Errorf("ollama", "embed", "refused"), http.StatusBadGateway, "INFERENCE_ERROR"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{fmt.Errorf("answering question: %w", model.Wrap("hf", "qa", fmt.Errorf("calling model: %w", context.DeadlineExceeded))), http.StatusGatewayTimeout, "TIMEOUT"},
		{session.ErrTooManySessions, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{NewNotFoundError("session", "x"), http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		got := FromError(tt.err)
		assert.Equal(t, tt.status, got.Status, tt.err.Error())
		assert.Equal(t, tt.code, got.Code, tt.err.Error())
	}
}
