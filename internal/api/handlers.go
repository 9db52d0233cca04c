// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/qa"
	"github.com/pdiddy/neuroscholar/internal/session"
	"github.com/pdiddy/neuroscholar/pkg/types"
)

// MIMEMsgpack is the media type clients send in Accept to receive msgpack.
const MIMEMsgpack = "application/msgpack"

// Handler serves the session endpoints.
type Handler struct {
	assistant *assistant.Assistant
	sessions  *session.Manager
	maxUpload int64
	version   string
}

// NewHandler returns a Handler. maxUpload <= 0 means DefaultMaxUploadBytes.
func NewHandler(a *assistant.Assistant, sessions *session.Manager, maxUpload int64, version string) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{assistant: a, sessions: sessions, maxUpload: maxUpload, version: version}
}

type documentInfo struct {
	Name  string `json:"name"`
	Words int    `json:"words"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	Document  documentInfo `json:"document"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Words   int    `json:"words"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	qa.Result
	Formatted string `json:"formatted"`
}

type historyResponse struct {
	History []session.Exchange `json:"history" msgpack:"history"`
}

type questionsRequest struct {
	Seed *int64 `json:"seed"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
	Degraded  bool     `json:"degraded"`
	Message   string   `json:"message,omitempty"`
}

type evaluateRequest struct {
	Answers []assistant.Response `json:"answers"`
}

type gradeResponse struct {
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Verdict        string  `json:"verdict,omitempty"`
	ExpectedAnswer string  `json:"expected_answer,omitempty"`
	Similarity     float64 `json:"similarity"`
	Feedback       string  `json:"feedback,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type evaluateResponse struct {
	Grades []gradeResponse `json:"grades"`
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Len(),
	})
}

// HandleCreateSession creates a session from a multipart "file" upload.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	name, data, mimeType, err := h.readUpload(c)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Create()
	if err != nil {
		return FromError(err)
	}
	doc, err := h.assistant.Load(c.Request().Context(), sess, name, data, mimeType)
	if err != nil {
		h.sessions.Delete(sess.ID)
		return FromError(err)
	}
	return c.JSON(http.StatusCreated, sessionResponse{SessionID: sess.ID, Document: info(doc)})
}

// HandleReplaceDocument loads a new document into an existing session,
// clearing its summary, questions, and history.
func (h *Handler) HandleReplaceDocument(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	name, data, mimeType, err := h.readUpload(c)
	if err != nil {
		return err
	}
	doc, err := h.assistant.Load(c.Request().Context(), sess, name, data, mimeType)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{SessionID: sess.ID, Document: info(doc)})
}

// HandleDeleteSession ends a session.
func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSummary returns the document summary, computing it on first use.
func (h *Handler) HandleSummary(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	maxWords := 0
	if v := c.QueryParam("max_words"); v != "" {
		maxWords, err = strconv.Atoi(v)
		if err != nil || maxWords <= 0 {
			return NewBadRequestError("max_words must be a positive integer", err)
		}
	}
	summary, err := h.assistant.Summary(c.Request().Context(), sess, maxWords)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, summaryResponse{Summary: summary, Words: len(strings.Fields(summary))})
}

// HandleAsk answers a question about the session document.
func (h *Handler) HandleAsk(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	res, err := h.assistant.Ask(c.Request().Context(), sess, req.Question)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, askResponse{Result: res, Formatted: res.Format()})
}

// HandleHistory returns the conversation history, newest first, as JSON or
// msgpack depending on the Accept header.
func (h *Handler) HandleHistory(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	resp := historyResponse{History: sess.RecentHistory()}
	if resp.History == nil {
		resp.History = []session.Exchange{}
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEMsgpack) {
		data, err := msgpack.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encoding history: %w", err)
		}
		return c.Blob(http.StatusOK, MIMEMsgpack, data)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleQuestions generates comprehension questions. Generation failures
// still return 200 with the fallback text and degraded set.
func (h *Handler) HandleQuestions(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req questionsRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewBadRequestError("invalid request body", err)
		}
	}
	set, err := h.assistant.GenerateQuestions(c.Request().Context(), sess, req.Seed)
	if err != nil {
		return FromError(err)
	}
	resp := questionsResponse{Questions: set.Questions, Degraded: set.Degraded()}
	if set.Degraded() {
		resp.Message = assistant.Message(set.Err)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleEvaluate grades submitted answers. Blank answers are skipped.
func (h *Handler) HandleEvaluate(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if len(req.Answers) == 0 {
		return NewBadRequestError("answers are required", nil)
	}

	grades, err := h.assistant.Evaluate(c.Request().Context(), sess, req.Answers)
	if err != nil {
		return FromError(err)
	}
	resp := evaluateResponse{Grades: make([]gradeResponse, 0, len(grades))}
	for _, g := range grades {
		gr := gradeResponse{Question: g.Question, Answer: g.Answer}
		if g.Err != nil {
			gr.Error = assistant.Message(g.Err)
		} else {
			gr.Verdict = g.Evaluation.Verdict.String()
			gr.ExpectedAnswer = g.Evaluation.ExpectedAnswer
			gr.Similarity = g.Evaluation.Similarity
			gr.Feedback = g.Evaluation.Feedback()
		}
		resp.Grades = append(resp.Grades, gr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) session(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}

// readUpload reads the multipart "file" field.
func (h *Handler) readUpload(c echo.Context) (name string, data []byte, mimeType string, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, "", NewBadRequestError("multipart field \"file\" is required", err)
	}
	if fh.Size > h.maxUpload {
		return "", nil, "", &APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    "TOO_LARGE",
			Message: fmt.Sprintf("upload exceeds %d bytes", h.maxUpload),
		}
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, "", NewBadRequestError("reading upload", err)
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return "", nil, "", NewBadRequestError("reading upload", err)
	}
	return fh.Filename, data, fh.Header.Get(echo.HeaderContentType), nil
}

func info(doc types.Document) documentInfo {
	return documentInfo{Name: doc.Name, Words: doc.WordCount()}
}
