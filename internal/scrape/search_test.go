package scrape

import (
	"fmt"
	"strings"
	"testing"

	"github.com/caslex/caslex/internal/errclass"
)

func TestParseSearchResults_EmptyInputFails(t *testing.T) {
	_, err := ParseSearchResults("")
	if err == nil {
		t.Fatalf("expected error for empty html")
	}
	if kind := errclass.KindOf(err); kind != errclass.ParseFailure {
		t.Errorf("expected kind %q, got %q", errclass.ParseFailure, kind)
	}
	if !errclass.Recoverable(err) {
		t.Errorf("parse failures are recoverable")
	}
}

func TestParseSearchResults_CaseItemSelector(t *testing.T) {
	html := `<div class="case-item"><a href="/case/1">CAS 2023/A/12345 - FC Barcelona v. FIFA</a></div>`
	results, err := ParseSearchResults(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.CaseID != "CAS 2023/A/12345" {
		t.Errorf("expected case id CAS 2023/A/12345, got %q", r.CaseID)
	}
	if !strings.Contains(r.Title, "FC Barcelona") || !strings.Contains(r.Title, "FIFA") {
		t.Errorf("expected title with both parties, got %q", r.Title)
	}
	if r.Relevance != 1.0 {
		t.Errorf("expected placeholder relevance 1.0, got %v", r.Relevance)
	}
}

func TestParseSearchResults_RowsWithoutCitationSkipped(t *testing.T) {
	html := `
	<ul>
		<li class="result">CAS 2020/A/7000 - Club X v. Player Y</li>
		<li class="result">Sponsored link without any docket number</li>
		<li class="result">TAS 2011/O/2582 - Fédération A vs. Fédération B</li>
	</ul>`
	results, err := ParseSearchResults(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (bad row skipped), got %d", len(results))
	}
	if results[0].CaseID != "CAS 2020/A/7000" {
		t.Errorf("unexpected first id %q", results[0].CaseID)
	}
	if results[1].CaseID != "TAS 2011/O/2582" {
		t.Errorf("unexpected second id %q", results[1].CaseID)
	}
}

func TestParseSearchResults_GenericFallbackSkipsNestedDuplicates(t *testing.T) {
	// No known listing class: the bounded generic scan must pick the outer
	// container once, not its nested div again.
	html := `
	<div class="unknown-wrapper">
		<div class="unknown-row">
			<div class="inner">CAS 2019/A/6110 - Athlete v. IAAF</div>
		</div>
	</div>`
	results, err := ParseSearchResults(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected nested duplicates collapsed to 1 result, got %d", len(results))
	}
	if results[0].CaseID != "CAS 2019/A/6110" {
		t.Errorf("unexpected id %q", results[0].CaseID)
	}
}

func TestParseSearchResults_GenericScanIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("<body>")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, `<div class="filler-%d">no docket here</div>`, i)
	}
	b.WriteString(`<div>CAS 2022/A/8600 - Club v. Agent</div></body>`)
	results, err := ParseSearchResults(b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The matching div sits beyond the scan bound, so nothing is found.
	if len(results) != 0 {
		t.Errorf("expected bounded scan to stop before the late match, got %d results", len(results))
	}
}

func TestParseSearchResults_TitleFallsBackToIdentifier(t *testing.T) {
	html := `<div class="case-item">CAS 2018/A/5555</div>`
	results, err := ParseSearchResults(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "CAS 2018/A/5555" {
		t.Errorf("expected identifier as title fallback, got %q", results[0].Title)
	}
}
