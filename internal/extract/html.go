package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/caslex/caslex/internal/errclass"
)

// HTMLText flattens renderable body text out of an HTML document for
// chunking, dropping script/style and navigation chrome. Block elements are
// separated with blank lines so legal structure markers stay on line starts.
func HTMLText(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", errclass.NewParseFailure("empty html input", rawHTML)
	}
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", errclass.NewParseFailure("parse html: "+err.Error(), rawHTML)
	}

	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	var buf strings.Builder
	collectText(&buf, root)

	text := collapseBlankLines(buf.String())
	if text == "" {
		return "", errclass.NewParseFailure("html contains no body text", rawHTML)
	}
	return text, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func collectText(buf *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "nav", "footer", "header", "aside", "iframe":
			return
		case "br":
			buf.WriteString("\n")
		case "p", "div", "li", "td", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "article":
			buf.WriteString("\n\n")
		}
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(buf, c)
	}
}

// collapseBlankLines trims each line and squeezes runs of blank lines down
// to one separator.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			if len(out) == 0 {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
