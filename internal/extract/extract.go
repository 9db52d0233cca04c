// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns an uploaded document into a single text string.
// Plain text is decoded directly; PDFs are handed to a pluggable converter
// (the markitdown container or an HTTP parse service).
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Supported media types.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
)

// ErrExtraction matches every failure to turn an upload into text.
var ErrExtraction = errors.New("text extraction failed")

// Error records which upload could not be read.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every Error match ErrExtraction.
func (e *Error) Is(target error) bool { return target == ErrExtraction }

// PDFConverter turns raw PDF bytes into text.
type PDFConverter interface {
	Convert(ctx context.Context, data []byte) (string, error)
}

// Extractor dispatches uploads by media type.
type Extractor struct {
	pdf PDFConverter
}

// New returns an Extractor. pdf may be nil, in which case PDF uploads fail
// with ErrExtraction.
func New(pdf PDFConverter) *Extractor {
	return &Extractor{pdf: pdf}
}

// Extract returns the text of data. mimeType may be empty or generic, in
// which case the type is inferred from name and then from the content.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, name string) (string, error) {
	kind := DetectType(data, mimeType, name)

	var (
		text string
		err  error
	)
	switch kind {
	case MIMEText:
		text, err = decodeText(data)
	case MIMEPDF:
		if e.pdf == nil {
			return "", &Error{Name: name, Err: errors.New("no PDF converter configured")}
		}
		text, err = e.pdf.Convert(ctx, data)
	default:
		return "", &Error{Name: name, Err: fmt.Errorf("unsupported media type %q: upload a PDF or plain text file", kind)}
	}
	if err != nil {
		return "", &Error{Name: name, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{Name: name, Err: errors.New("document contains no text")}
	}
	slog.Debug("extracted document", "name", name, "type", kind, "bytes", len(data), "chars", utf8.RuneCountInString(text))
	return text, nil
}

// DetectType resolves the media type of an upload. An explicit, specific
// mimeType wins; then the file extension; then content sniffing.
func DetectType(data []byte, mimeType, name string) string {
	if mt := baseType(mimeType); mt != "" && mt != "application/octet-stream" {
		if mt == "text/markdown" {
			return MIMEText
		}
		return mt
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MIMEPDF
	case ".txt", ".md", ".text":
		return MIMEText
	}

	return baseType(http.DetectContentType(data))
}

func baseType(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// decodeText validates UTF-8 and drops a leading byte order mark.
func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
