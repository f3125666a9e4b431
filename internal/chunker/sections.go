package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// Canonical award sections matched in the languages the sources publish in
// (English, French, German, Spanish, Italian). Headers may carry Roman
// numeral prefixes, e.g. "IV. EN DROIT".
var sectionPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"facts", regexp.MustCompile(`(?mi)^\s*(?:[IVXLC]+\s*[.)]\s*)?(?:the\s+)?(facts|factual background|background|sachverhalt|en fait|faits|antecedentes|hechos|fatti)\b`)},
	{"reasons", regexp.MustCompile(`(?mi)^\s*(?:[IVXLC]+\s*[.)]\s*)?(?:in\s+)?(law|merits|reasons|legal (?:analysis|discussion)|erw(?:ä|ae)gungen|rechtliche w(?:ü|ue)rdigung|en droit|consid(?:é|e)rants|fundamentos|diritto)\b`)},
	{"decision", regexp.MustCompile(`(?mi)^\s*(?:[IVXLC]+\s*[.)]\s*)?(?:the\s+)?(decision|ruling|operative part|on these grounds|dispositif|par ces motifs|entscheid|urteilsspruch|fallo|decisione|p\.?q\.?m\.?)\b`)},
}

const (
	// sectionCompleteTag marks chunks of a text where no canonical section
	// was detected.
	sectionCompleteTag = "complete"
	// sectionHeaderTag marks text preceding the first detected section,
	// typically the case caption and panel composition.
	sectionHeaderTag = "header"
)

type sectionSpan struct {
	name  string
	start int
}

// FragmentBySections locates canonical legal sections (facts, reasons,
// decision) and fragments each section slice separately so no fragment
// straddles a section boundary. Caption text before the first section is
// kept under the "header" tag; texts without detectable sections fall
// back to fragmenting whole under the "complete" tag. Positions stay
// strictly increasing across the whole parent.
func (c *Chunker) FragmentBySections(text, parentID string) []Chunk {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	spans := detectSections(trimmed)
	if len(spans) == 0 {
		return c.Fragment(trimmed, parentID, 1, sectionCompleteTag)
	}

	var chunks []Chunk
	if lead := strings.TrimSpace(trimmed[:spans[0].start]); lead != "" {
		chunks = c.Fragment(lead, parentID, 1, sectionHeaderTag)
	}
	for i, span := range spans {
		end := len(trimmed)
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		for _, ch := range c.Fragment(trimmed[span.start:end], parentID, 1, span.name) {
			ch.Position = len(chunks)
			chunks = append(chunks, ch)
		}
	}
	return chunks
}

// detectSections returns the first occurrence of each canonical section,
// ordered by offset.
func detectSections(text string) []sectionSpan {
	var spans []sectionSpan
	for _, pattern := range sectionPatterns {
		if loc := pattern.re.FindStringIndex(text); loc != nil {
			spans = append(spans, sectionSpan{name: pattern.name, start: loc[0]})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}
