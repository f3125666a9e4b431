package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultResultsPerPage matches the page size the sources use when none is
// advertised in the markup.
const defaultResultsPerPage = 20

var paginationContainers = []string{
	".pagination",
	".pager",
	"nav.pagination",
	"ul.pagination",
	"nav[aria-label='pagination']",
}

var resultsCountSelectors = []string{
	".results-count",
	".result-count",
	".search-count",
	".total-results",
}

var intRe = regexp.MustCompile(`\d+`)

// ExtractPagination reads paging state from a results page. It never fails:
// a page without pagination markup is a single page with zero known
// results, {1,1,0,20}.
func ExtractPagination(rawHTML string) Pagination {
	p := Pagination{CurrentPage: 1, TotalPages: 1, TotalResults: 0, ResultsPerPage: defaultResultsPerPage}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return p
	}

	var container *goquery.Selection
	for _, selector := range paginationContainers {
		if found := doc.Find(selector); found.Length() > 0 {
			container = found.First()
			break
		}
	}

	if container != nil {
		if current := firstInt(container.Find(".active, .current, .is-active, [aria-current]").Text()); current > 0 {
			p.CurrentPage = current
		}
		// Total pages is the largest page number any pagination link shows.
		maxPage := p.CurrentPage
		container.Find("a, li, span, button").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if n, err := strconv.Atoi(text); err == nil && n > maxPage {
				maxPage = n
			}
		})
		p.TotalPages = maxPage
	}

	for _, selector := range resultsCountSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			if n := lastInt(found.First().Text()); n > 0 {
				p.TotalResults = n
			}
			break
		}
	}

	// Clamp the invariant currentPage ∈ [1, totalPages] against markup that
	// highlights a page outside its own link range.
	if p.CurrentPage > p.TotalPages {
		p.TotalPages = p.CurrentPage
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	return p
}

func firstInt(s string) int {
	if m := intRe.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

func lastInt(s string) int {
	all := intRe.FindAllString(s, -1)
	if len(all) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(all[len(all)-1])
	return n
}
