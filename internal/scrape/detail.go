package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/caslex/caslex/internal/errclass"
)

var titleSelectors = []string{
	"h1.case-title",
	"h1.book-title",
	"h1.title",
	".detail-title",
	"h1",
	"h2.title",
}

var (
	// isbnRe accepts hyphen/space-grouped ISBN-10 and ISBN-13 forms; digit
	// count is verified separately.
	isbnRe = regexp.MustCompile(`^(?:97[89][-\s]?)?[\d\s-]{9,16}[\dXx]$`)
	// yearRe keeps matches inside plausible publication centuries.
	yearRe      = regexp.MustCompile(`\b(1[89]\d{2}|20[0-4]\d)\b`)
	pageRangeRe = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	chapterNoRe = regexp.MustCompile(`(?i)^(?:chapter|kapitel|chapitre)?\s*(\d+)`)
)

// matterKeywords maps lower-cased page text to a legal-area tag, first
// match wins. Keyword lists overlap; occasional misclassification is an
// accepted property of the heuristic, not a bug to engineer away.
var matterKeywords = []struct {
	keyword string
	matter  string
}{
	{"doping", "doping"},
	{"anti-doping", "doping"},
	{"transfer", "transfer disputes"},
	{"training compensation", "transfer disputes"},
	{"contract", "contract law"},
	{"employment", "contract law"},
	{"governance", "sports governance"},
	{"election", "sports governance"},
	{"eligibility", "eligibility"},
	{"nationality", "eligibility"},
	{"disciplinary", "disciplinary law"},
	{"match-fixing", "disciplinary law"},
	{"arbitration", "sports arbitration"},
	{"football", "football"},
	{"athletics", "athletics"},
	{"cycling", "cycling"},
}

// ParseDetailPage parses an award or publication detail page. Title is the
// one mandatory field; its absence fails the parse. The identifier is
// load-bearing here: a present-but-malformed one is a permanent
// CitationFormatInvalid, unlike search rows where a bad row is just
// skipped. Every optional field is extracted independently and silently
// defaults when its markup is missing or broken.
func ParseDetailPage(rawHTML, id string) (*Detail, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, errclass.NewParseFailure("empty html input", rawHTML)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, errclass.NewParseFailure("parse html: "+err.Error(), rawHTML)
	}

	title := firstText(doc, titleSelectors)
	if title == "" {
		return nil, errclass.NewParseFailure("detail page has no title", rawHTML)
	}

	identifier, err := resolveIdentifier(doc, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Title:      title,
		Subtitle:   firstText(doc, []string{".subtitle", "h2.subtitle", ".book-subtitle"}),
		Authors:    extractPeople(doc, ".author", ".authors"),
		Editors:    extractPeople(doc, ".editor", ".editors"),
		Publisher:  firstText(doc, []string{".publisher", ".press", ".imprint"}),
		Identifier: identifier,
		Abstract:   firstText(doc, []string{".abstract", ".summary", ".description"}),
		Keywords:   extractKeywords(doc),
		Chapters:   extractChapters(doc),
	}

	fullText := doc.Text()
	d.Year = extractYear(doc, fullText)
	d.Matter = classifyMatter(fullText)

	if href, ok := doc.Find(`a[href$=".pdf"]`).First().Attr("href"); ok {
		d.FileURL = href
	}
	if src, ok := doc.Find(".cover img, img.cover").First().Attr("src"); ok {
		d.CoverURL = src
	}
	if n := firstInt(firstText(doc, []string{".page-count", ".pages", ".total-pages"})); n > 0 {
		d.PageCount = n
	}
	return d, nil
}

// resolveIdentifier prefers the identifier displayed on the page, falling
// back to the caller-supplied one. A candidate that matches neither the
// citation nor the ISBN shape cannot be fixed by refetching the same page.
func resolveIdentifier(doc *goquery.Document, id string) (string, error) {
	candidate := firstText(doc, []string{".case-number", ".citation", ".isbn", ".identifier"})
	if candidate == "" {
		candidate = strings.TrimSpace(id)
	}
	if candidate == "" {
		return "", errclass.NewParseFailure("detail page has no identifier", "")
	}
	if m := caseNumberRe.FindString(candidate); m != "" {
		return NormalizeCitation(m), nil
	}
	if isValidISBN(candidate) {
		return candidate, nil
	}
	return "", errclass.NewCitationFormatInvalid("identifier is neither a citation nor an ISBN", candidate)
}

func isValidISBN(s string) bool {
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(s), "ISBN"))
	s = strings.TrimSpace(strings.TrimPrefix(s, ":"))
	if !isbnRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' || r == 'X' || r == 'x' {
			digits++
		}
	}
	return digits == 10 || digits == 13
}

// extractPeople runs the three author strategies in order: a single
// element, a repeated class, then a comma-separated list inside the
// container element.
func extractPeople(doc *goquery.Document, single, container string) []string {
	found := doc.Find(single)
	switch found.Length() {
	case 0:
		// fall through to the container text
	case 1:
		if t := strings.TrimSpace(found.Text()); t != "" {
			return []string{t}
		}
	default:
		var out []string
		found.Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				out = append(out, t)
			}
		})
		return out
	}

	text := strings.TrimSpace(doc.Find(container).First().Text())
	if text == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func extractKeywords(doc *goquery.Document) []string {
	var out []string
	doc.Find(".keywords li, .tags li, .keyword, .tag").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	if len(out) > 0 {
		return out
	}
	text := strings.TrimSpace(doc.Find(".keywords, .tags").First().Text())
	if text == "" {
		return nil
	}
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractChapters reads repeated chapter/TOC nodes. An unreadable chapter
// row is skipped; partial tables of contents are normal.
func extractChapters(doc *goquery.Document) []Chapter {
	var out []Chapter
	doc.Find(".chapter, li.chapter, .toc-item, tr.chapter").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		ch := Chapter{Number: i + 1, Title: text}
		if numberText := strings.TrimSpace(s.Find(".chapter-number, .number").First().Text()); numberText != "" {
			if m := chapterNoRe.FindStringSubmatch(numberText); m != nil {
				ch.Number, _ = strconv.Atoi(m[1])
			}
		} else if m := chapterNoRe.FindStringSubmatch(text); m != nil && m[1] != "" {
			ch.Number, _ = strconv.Atoi(m[1])
		}
		if t := strings.TrimSpace(s.Find(".chapter-title, .title").First().Text()); t != "" {
			ch.Title = t
		}
		if m := pageRangeRe.FindStringSubmatch(text); m != nil {
			ch.StartPage, _ = strconv.Atoi(m[1])
			ch.EndPage, _ = strconv.Atoi(m[2])
		}
		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			ch.FileURL = href
		}
		out = append(out, ch)
	})
	return out
}

func extractYear(doc *goquery.Document, fullText string) int {
	candidates := firstText(doc, []string{".year", ".publication-year", ".published", ".publication-date"})
	if m := yearRe.FindString(candidates); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	if m := yearRe.FindString(fullText); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

func classifyMatter(fullText string) string {
	lower := strings.ToLower(fullText)
	for _, entry := range matterKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.matter
		}
	}
	return ""
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if t := strings.TrimSpace(doc.Find(selector).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
