package scrape

import (
	"regexp"
	"strings"
)

// caseNumberRe matches arbitration citations such as "CAS 2023/A/12345" or
// "TAS 2011/O/2582". Whitespace between the court code and the docket is
// flexible because copy-pasted markup often carries non-breaking spaces.
var caseNumberRe = regexp.MustCompile(`(?i)\b(?:CAS|TAS)[\s\x{00a0}]+\d{4}/[A-Z]{1,3}/\d{1,6}\b`)

// ExtractCaseNumbers scans free text for arbitration citations and returns
// them normalized (upper case, single spaces), de-duplicated in first-seen
// order. Empty input yields an empty list.
func ExtractCaseNumbers(text string) []string {
	matches := caseNumberRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		norm := NormalizeCitation(m)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// NormalizeCitation upper-cases a citation and collapses internal
// whitespace runs to single spaces.
func NormalizeCitation(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
}

// IsValidCitation reports whether s is, in its entirety, one well-formed
// arbitration citation.
func IsValidCitation(s string) bool {
	m := caseNumberRe.FindString(s)
	return m != "" && strings.TrimSpace(s) == m
}
