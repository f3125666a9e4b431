package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/caslex/caslex/internal/errclass"
)

// PDF extracts page-indexed text from a PDF buffer. An unreadable buffer is
// PdfCorrupted, an encrypted document is PdfPasswordProtected, and a
// readable document whose pages yield only whitespace is PdfEmpty. All three
// are permanent: the same bytes will fail the same way.
func PDF(b []byte) (*Result, error) {
	reader, err := openPDF(b)
	if err != nil {
		if errors.Is(err, pdflib.ErrInvalidPassword) {
			return nil, errclass.NewPDFPasswordProtected("document requires a password")
		}
		return nil, errclass.NewPDFCorrupted(fmt.Sprintf("open pdf: %v", err))
	}

	numPages := reader.NumPage()
	pages := make(map[int]string, numPages)
	var joined strings.Builder
	for i := 1; i <= numPages; i++ {
		text := pageText(reader, i)
		pages[i] = text
		if text != "" {
			if joined.Len() > 0 {
				joined.WriteString("\n")
			}
			joined.WriteString(text)
		}
	}

	full := strings.TrimSpace(joined.String())
	if full == "" {
		return nil, errclass.NewPDFEmpty("pdf pages contain no extractable text")
	}

	return &Result{
		Text:       full,
		PageCount:  numPages,
		Pages:      pages,
		Confidence: scoreConfidence(full, numPages),
	}, nil
}

// openPDF opens the buffer, converting the library's panics on malformed
// cross-reference tables into errors.
func openPDF(b []byte) (reader *pdflib.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("malformed pdf structure: %v", r)
		}
	}()
	return pdflib.NewReader(bytes.NewReader(b), int64(len(b)))
}

// pageText reads one page, tolerating per-page failures: a single bad page
// inside an otherwise readable document contributes an empty string.
func pageText(reader *pdflib.Reader, n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(t)
}
