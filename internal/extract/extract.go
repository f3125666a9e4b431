// Package extract converts source document buffers (PDF, DOCX, Markdown,
// HTML, plain text) into chunker-ready plain text. Extraction is
// all-or-nothing per document: a document that opens but yields no text is a
// classified failure, while quality problems in readable text are reflected
// in the confidence score instead.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caslex/caslex/internal/errclass"
)

// Result is the outcome of extracting one document.
type Result struct {
	// Title is taken from document metadata or headings when available.
	Title string `json:"title,omitempty"`
	// Text is the full extracted text, page texts joined in page order.
	Text string `json:"text"`
	// PageCount is the number of source pages. Formats without a page
	// concept report 1.
	PageCount int `json:"page_count"`
	// Pages maps 1-based page numbers to their text. It always has exactly
	// PageCount entries; unreadable pages inside a valid document map to "".
	Pages map[int]string `json:"pages,omitempty"`
	// Confidence estimates extraction quality in [0,1]. Heuristic, not a
	// probability.
	Confidence float64 `json:"confidence"`
}

// ExtractFunc extracts one document buffer.
type ExtractFunc func(b []byte) (*Result, error)

// SupportedExtensions lists the file extensions this package handles.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
}

// ForFilename returns the extractor matching the file extension.
func ForFilename(filename string) (ExtractFunc, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF, nil
	case ".docx":
		return DOCX, nil
	case ".md", ".markdown":
		return Markdown, nil
	case ".html", ".htm":
		return htmlExtract, nil
	case ".txt":
		return Text, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks whether a filename can be extracted.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Text extracts a plain-text buffer. Kept as an ExtractFunc so text files
// flow through the same dispatch as binary formats.
func Text(b []byte) (*Result, error) {
	text := strings.TrimSpace(string(b))
	if text == "" {
		return nil, errclass.NewPDFEmpty("document contains no text")
	}
	return &Result{
		Text:       text,
		PageCount:  1,
		Pages:      map[int]string{1: text},
		Confidence: scoreConfidence(text, 1),
	}, nil
}

func htmlExtract(b []byte) (*Result, error) {
	text, err := HTMLText(string(b))
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:       text,
		PageCount:  1,
		Pages:      map[int]string{1: text},
		Confidence: scoreConfidence(text, 1),
	}, nil
}
