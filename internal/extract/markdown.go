package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/caslex/caslex/internal/errclass"
)

// Markdown extracts plain text from a Markdown buffer. Some registries and
// commentary sources publish decisions as Markdown. Headings are kept inline
// on their own lines; the first level-1 heading becomes the title.
func Markdown(b []byte) (*Result, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(b))

	var title string
	var buf strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var block string
		if h, ok := n.(*ast.Heading); ok {
			block = string(h.Text(b))
			if title == "" && h.Level == 1 {
				title = block
			}
		} else {
			block = nodeText(n, b)
		}
		if block == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(block)
	}

	full := strings.TrimSpace(buf.String())
	if full == "" {
		return nil, errclass.NewPDFEmpty("markdown contains no text")
	}
	return &Result{
		Title:      title,
		Text:       full,
		PageCount:  1,
		Pages:      map[int]string{1: full},
		Confidence: scoreConfidence(full, 1),
	}, nil
}

// nodeText gets the text content of a goldmark AST node.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
