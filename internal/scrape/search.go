package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/caslex/caslex/internal/errclass"
)

// resultSelectors are tried in order; the first one with matches wins.
// Specific listing containers come before generic framework classes.
var resultSelectors = []string{
	".case-item",
	".result-item",
	".search-result",
	".views-row",
	"tr.result",
	"li.result",
	"article.result",
}

// genericScanLimit bounds the fallback scan over generic containers so a
// pathological page cannot blow up the parse.
const genericScanLimit = 50

// partyVsRe matches a "party v. party" case caption. Multi-party names with
// an internal "v." can over-match; that ambiguity is accepted.
var partyVsRe = regexp.MustCompile(`(?i)([\p{L}0-9][\p{L}0-9 .,'&()-]{0,120}?\s+v\.?s?\.?\s+[\p{L}0-9][\p{L}0-9 .,'&()-]{0,120})`)

// ParseSearchResults extracts listing entries from a search results page.
// Candidate nodes come from the selector cascade, falling back to a bounded
// scan of generic containers whose text carries a citation. Entries without
// an extractable citation are skipped; only empty input fails the parse.
func ParseSearchResults(rawHTML string) ([]SearchResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, errclass.NewParseFailure("empty html input", rawHTML)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, errclass.NewParseFailure("parse html: "+err.Error(), rawHTML)
	}

	candidates := findCandidates(doc)

	results := make([]SearchResult, 0, len(candidates))
	for _, sel := range candidates {
		text := sel.Text()
		citation := caseNumberRe.FindString(text)
		if citation == "" {
			// Partial-success policy: a row without an identifier is
			// dropped, never fatal.
			continue
		}
		id := NormalizeCitation(citation)
		results = append(results, SearchResult{
			CaseID:    id,
			Title:     extractTitle(sel, text, citation, id),
			Relevance: 1.0,
		})
	}
	return results, nil
}

// findCandidates applies the selector cascade, then the citation-gated
// generic scan. The scan skips elements nested inside an already matched
// ancestor to avoid near-duplicate rows.
func findCandidates(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range resultSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		out := make([]*goquery.Selection, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
		return out
	}

	var out []*goquery.Selection
	matched := make(map[*html.Node]bool)
	doc.Find("div, li, td, article").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= genericScanLimit {
			return false
		}
		node := s.Get(0)
		for p := node.Parent; p != nil; p = p.Parent {
			if matched[p] {
				return true
			}
		}
		if !caseNumberRe.MatchString(s.Text()) {
			return true
		}
		matched[node] = true
		out = append(out, s)
		return true
	})
	return out
}

// extractTitle tries, in order: the first anchor's text against the case
// caption pattern, the remaining node text against the same pattern, then
// the citation itself.
func extractTitle(sel *goquery.Selection, nodeText, citation, id string) string {
	anchor := strings.TrimSpace(sel.Find("a").First().Text())
	if anchor != "" {
		if m := partyVsRe.FindString(stripCitation(anchor, citation)); m != "" {
			return strings.TrimSpace(m)
		}
	}
	if m := partyVsRe.FindString(stripCitation(nodeText, citation)); m != "" {
		return strings.TrimSpace(m)
	}
	return id
}

// stripCitation removes the citation and any separator run that follows it
// so the caption regex does not swallow the docket number.
func stripCitation(text, citation string) string {
	text = strings.Replace(text, citation, "", 1)
	return strings.TrimLeft(text, " \t -–—:|,")
}
