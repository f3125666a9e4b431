package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/caslex/caslex/internal/errclass"
)

// DOCX extracts text from a Word document buffer. Heading paragraphs become
// their own lines so the chunker's separator pass can still see document
// structure; the first level-1 heading becomes the title.
func DOCX(b []byte) (*Result, error) {
	doc, err := docx.Parse(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, errclass.NewPDFCorrupted(fmt.Sprintf("parse docx: %v", err))
	}

	var title string
	var buf strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if title == "" && headingLevel(para) == 1 {
			title = text
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	full := strings.TrimSpace(buf.String())
	if full == "" {
		return nil, errclass.NewPDFEmpty("docx contains no text")
	}
	return &Result{
		Title:      title,
		Text:       full,
		PageCount:  1,
		Pages:      map[int]string{1: full},
		Confidence: scoreConfidence(full, 1),
	}, nil
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
