// Package errclass defines the classified error taxonomy shared by every
// stage of the acquisition pipeline. Each error carries a Kind and a
// Recoverable flag; callers branch on the flag to decide whether a retry
// against fresh input can possibly succeed. This package never retries
// anything itself.
package errclass

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class.
type Kind string

const (
	// Recoverable kinds: retrying the same logical operation against fresh
	// input (a re-fetch, a re-render) may succeed.
	ParseFailure      Kind = "parse_failure"
	RenderFailure     Kind = "render_failure"
	Timeout           Kind = "timeout"
	RateLimited       Kind = "rate_limited"
	RemoteServerError Kind = "remote_server_error"
	ChunkingFailure   Kind = "chunking_failure"

	// Permanent kinds: retrying without a material change in input cannot
	// succeed.
	ComponentUnavailable  Kind = "component_unavailable"
	PDFCorrupted          Kind = "pdf_corrupted"
	PDFPasswordProtected  Kind = "pdf_password_protected"
	PDFEmpty              Kind = "pdf_empty"
	CitationFormatInvalid Kind = "citation_format_invalid"
)

// htmlSampleLimit caps the markup excerpt attached to parse failures.
const htmlSampleLimit = 500

// Error is the classified pipeline error. Kind-specific payload fields are
// zero-valued for kinds that do not use them.
type Error struct {
	Kind        Kind
	Message     string
	Recoverable bool

	// HTMLSample is a bounded excerpt of the offending markup (ParseFailure).
	HTMLSample string
	// URL is the page that failed to render (RenderFailure).
	URL string
	// TimeoutSeconds is the deadline that was exceeded (Timeout).
	TimeoutSeconds float64
	// RetryAfterSeconds tells the caller how long to back off (RateLimited).
	RetryAfterSeconds int
	// StatusCode is the upstream HTTP status (RemoteServerError).
	StatusCode int
	// RawText is the malformed identifier (CitationFormatInvalid).
	RawText string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewParseFailure reports markup that could not be parsed. The sample is
// truncated to 500 bytes.
func NewParseFailure(message, htmlSample string) *Error {
	if len(htmlSample) > htmlSampleLimit {
		htmlSample = htmlSample[:htmlSampleLimit]
	}
	return &Error{Kind: ParseFailure, Message: message, Recoverable: true, HTMLSample: htmlSample}
}

// NewRenderFailure reports a page that navigated but never produced the
// expected content.
func NewRenderFailure(message, url string) *Error {
	return &Error{Kind: RenderFailure, Message: message, Recoverable: true, URL: url}
}

// NewTimeout reports an exceeded navigation or wait deadline.
func NewTimeout(message string, seconds float64) *Error {
	return &Error{Kind: Timeout, Message: message, Recoverable: true, TimeoutSeconds: seconds}
}

// NewRateLimited reports an upstream throttle. A non-positive retryAfter
// falls back to 60 seconds.
func NewRateLimited(message string, retryAfterSeconds int) *Error {
	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	return &Error{Kind: RateLimited, Message: message, Recoverable: true, RetryAfterSeconds: retryAfterSeconds}
}

// NewRemoteServerError reports an upstream 5xx. A non-positive status falls
// back to 500.
func NewRemoteServerError(message string, statusCode int) *Error {
	if statusCode <= 0 {
		statusCode = 500
	}
	return &Error{Kind: RemoteServerError, Message: message, Recoverable: true, StatusCode: statusCode}
}

// NewChunkingFailure reports a text that could not be fragmented.
func NewChunkingFailure(message string) *Error {
	return &Error{Kind: ChunkingFailure, Message: message, Recoverable: true}
}

// NewComponentUnavailable reports a call against a component that is not in
// a usable state, e.g. rendering before the browser session started.
func NewComponentUnavailable(message string) *Error {
	return &Error{Kind: ComponentUnavailable, Message: message}
}

// NewPDFCorrupted reports a buffer that is not a readable PDF.
func NewPDFCorrupted(message string) *Error {
	return &Error{Kind: PDFCorrupted, Message: message}
}

// NewPDFPasswordProtected reports an encrypted document that needs a
// password before any extraction can be attempted.
func NewPDFPasswordProtected(message string) *Error {
	return &Error{Kind: PDFPasswordProtected, Message: message}
}

// NewPDFEmpty reports a readable document whose pages yielded no text.
func NewPDFEmpty(message string) *Error {
	return &Error{Kind: PDFEmpty, Message: message}
}

// NewCitationFormatInvalid reports a load-bearing identifier that is present
// but malformed.
func NewCitationFormatInvalid(message, rawText string) *Error {
	return &Error{Kind: CitationFormatInvalid, Message: message, RawText: rawText}
}

// Recoverable reports whether err is a classified error safe to retry
// against fresh input. Unclassified errors are treated as permanent.
func Recoverable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Recoverable
	}
	return false
}

// KindOf returns the classification of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
