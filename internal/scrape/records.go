// Package scrape turns HTML from legal-document sources into structured
// records. Markup across sources is inconsistent and partially broken, so
// every operation works through ordered fallback strategies: specific
// selectors first, generic scans gated by citation patterns last. Parsing a
// collection is best-effort; one bad row is skipped, never fatal.
package scrape

// SearchResult is one entry from a case-law search listing.
type SearchResult struct {
	CaseID string `json:"case_id"`
	Title  string `json:"title"`
	// Relevance is a placeholder score until a source exposes a real
	// ranking signal.
	Relevance float64 `json:"relevance"`
}

// Pagination describes the position of a results page inside the full set.
type Pagination struct {
	CurrentPage    int `json:"current_page"`
	TotalPages     int `json:"total_pages"`
	TotalResults   int `json:"total_results"`
	ResultsPerPage int `json:"results_per_page"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (p Pagination) HasPrevious() bool { return p.CurrentPage > 1 }

// Detail is a fully parsed detail page: an arbitral award or a legal
// publication. Only Title is mandatory; every other field defaults to its
// zero value when the source omits it.
type Detail struct {
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle,omitempty"`
	Authors    []string  `json:"authors,omitempty"`
	Editors    []string  `json:"editors,omitempty"`
	Publisher  string    `json:"publisher,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Year       int       `json:"year,omitempty"`
	Matter     string    `json:"matter,omitempty"`
	Abstract   string    `json:"abstract,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	Chapters   []Chapter `json:"chapters,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	CoverURL   string    `json:"cover_url,omitempty"`
	PageCount  int       `json:"page_count,omitempty"`
}

// Chapter is one table-of-contents entry on a publication detail page.
type Chapter struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	StartPage int    `json:"start_page,omitempty"`
	EndPage   int    `json:"end_page,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
}
