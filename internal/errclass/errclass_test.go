package errclass

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKinds_RecoverableFlags(t *testing.T) {
	cases := []struct {
		err         *Error
		kind        Kind
		recoverable bool
	}{
		{NewParseFailure("bad markup", "<div>"), ParseFailure, true},
		{NewRenderFailure("selector never appeared", "https://example.org"), RenderFailure, true},
		{NewTimeout("navigation", 30), Timeout, true},
		{NewRateLimited("throttled", 0), RateLimited, true},
		{NewRemoteServerError("upstream", 0), RemoteServerError, true},
		{NewChunkingFailure("unsplittable"), ChunkingFailure, true},
		{NewComponentUnavailable("session not started"), ComponentUnavailable, false},
		{NewPDFCorrupted("bad xref"), PDFCorrupted, false},
		{NewPDFPasswordProtected("encrypted"), PDFPasswordProtected, false},
		{NewPDFEmpty("no text"), PDFEmpty, false},
		{NewCitationFormatInvalid("malformed", "CAS 20//X"), CitationFormatInvalid, false},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Errorf("expected kind %q, got %q", c.kind, c.err.Kind)
		}
		if c.err.Recoverable != c.recoverable {
			t.Errorf("%s: expected recoverable=%v", c.kind, c.recoverable)
		}
	}
}

func TestDefaults_RetryAfterAndStatus(t *testing.T) {
	rl := NewRateLimited("slow down", 0)
	if rl.RetryAfterSeconds != 60 {
		t.Errorf("expected default retry-after 60, got %d", rl.RetryAfterSeconds)
	}
	rl = NewRateLimited("slow down", 120)
	if rl.RetryAfterSeconds != 120 {
		t.Errorf("expected retry-after 120, got %d", rl.RetryAfterSeconds)
	}

	rse := NewRemoteServerError("boom", 0)
	if rse.StatusCode != 500 {
		t.Errorf("expected default status 500, got %d", rse.StatusCode)
	}
	rse = NewRemoteServerError("bad gateway", 502)
	if rse.StatusCode != 502 {
		t.Errorf("expected status 502, got %d", rse.StatusCode)
	}
}

func TestParseFailure_SampleTruncated(t *testing.T) {
	sample := strings.Repeat("<p>filler</p>", 200)
	pf := NewParseFailure("too much markup", sample)
	if len(pf.HTMLSample) != 500 {
		t.Errorf("expected sample capped at 500 bytes, got %d", len(pf.HTMLSample))
	}
}

func TestRecoverable_UnwrapsAndDefaultsFalse(t *testing.T) {
	wrapped := fmt.Errorf("render page: %w", NewTimeout("navigation", 10))
	if !Recoverable(wrapped) {
		t.Errorf("expected wrapped timeout to be recoverable")
	}
	if KindOf(wrapped) != Timeout {
		t.Errorf("expected kind %q, got %q", Timeout, KindOf(wrapped))
	}

	if Recoverable(errors.New("plain")) {
		t.Errorf("unclassified errors must not be recoverable")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Errorf("unclassified errors must have empty kind")
	}
	if Recoverable(nil) {
		t.Errorf("nil must not be recoverable")
	}
}

func TestError_MessageIncludesKind(t *testing.T) {
	err := NewPDFCorrupted("unreadable buffer")
	if !strings.Contains(err.Error(), "pdf_corrupted") {
		t.Errorf("expected kind in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "unreadable buffer") {
		t.Errorf("expected message text, got %q", err.Error())
	}
}
