// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the per-reader state of the assistant: the loaded
// document, the artifacts derived from it, and the question history.
// Loading a new document clears everything derived from the old one.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/pdiddy/neuroscholar/pkg/types"
)

// Exchange is one answered question in the conversation history.
type Exchange struct {
	Question string    `json:"question" yaml:"question" msgpack:"question"`
	Answer   string    `json:"answer" yaml:"answer" msgpack:"answer"`
	AskedAt  time.Time `json:"asked_at" yaml:"asked_at" msgpack:"asked_at"`
}

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu        sync.RWMutex
	doc       types.Document
	loaded    bool
	summary   string
	questions []string
	history   []Exchange
	touched   time.Time
	now       func() time.Time
}

// New returns an empty session with the given ID.
func New(id string) *Session {
	return newSession(id, time.Now)
}

func newSession(id string, now func() time.Time) *Session {
	return &Session{ID: id, now: now, touched: now()}
}

// Load replaces the document and clears the summary, questions, and
// history derived from the previous one.
func (s *Session) Load(doc types.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.loaded = true
	s.summary = ""
	s.questions = nil
	s.history = nil
	s.touched = s.now()
}

// Document returns the loaded document and whether one is loaded.
func (s *Session) Document() (types.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.loaded
}

// Summary returns the cached summary, or "" when none was computed since
// the last Load.
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// SetSummary caches summary as computed from doc. It is dropped when the
// session has since loaded a different document.
func (s *Session) SetSummary(doc types.Document, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.doc != doc {
		return
	}
	s.summary = summary
}

// Questions returns a copy of the last generated questions.
func (s *Session) Questions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.questions)
}

// SetQuestions stores the latest generated questions.
func (s *Session) SetQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = slices.Clone(questions)
	s.touched = s.now()
}

// Append records an answered question.
func (s *Session) Append(question, formatted string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.history = append(s.history, Exchange{Question: question, Answer: formatted, AskedAt: now})
	s.touched = now
}

// History returns the exchanges in the order they were asked.
func (s *Session) History() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// RecentHistory returns the exchanges newest first.
func (s *Session) RecentHistory() []Exchange {
	h := s.History()
	slices.Reverse(h)
	return h
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
}

// LastUsed returns when the session was last loaded, asked, or touched.
func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched
}
