// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data shared across neuroscholar packages:
// configuration and the loaded document.
package types

import "strings"

// Document is the extracted text of one uploaded file. It is created once
// per upload and never mutated; every derived artifact is a function of it.
type Document struct {
	// Name is the uploaded file name (e.g. "attention.pdf").
	Name string `json:"name" yaml:"name"`

	// Text is the full extracted text.
	Text string `json:"text" yaml:"text"`
}

// NewDocument builds a Document from a file name and its extracted text.
func NewDocument(name, text string) Document {
	return Document{Name: name, Text: text}
}

// Empty reports whether the document has no non-whitespace text.
func (d Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// WordCount returns the number of whitespace-delimited tokens in the text.
func (d Document) WordCount() int {
	return len(strings.Fields(d.Text))
}
