package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caslex/caslex/internal/config"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	cfg.CaslexAPIKey = testAPIKey
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, log, cfg)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/citations", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/citations", strings.NewReader(`{"text":""}`))
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}

	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("auth rejection body is not json: %v", err)
	}
	if out.Error == "" {
		t.Error("auth rejection body has no error field")
	}
}

func TestParseSearch(t *testing.T) {
	s := newTestServer(t)
	html := `<html><body>
		<div class="case-item"><a href="/case/1">CAS 2023/A/12345 Club X v. Player Y</a></div>
		<div class="case-item"><a href="/case/2">CAS 2022/O/8888 Federation Z v. Athlete Q</a></div>
	</body></html>`

	rec := doJSON(t, s, http.MethodPost, "/api/parse/search", map[string]string{"html": html})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Results []struct {
			CaseID string `json:"case_id"`
		} `json:"results"`
		Pagination struct {
			CurrentPage int `json:"current_page"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(out.Results))
	}
	if out.Results[0].CaseID != "CAS 2023/A/12345" {
		t.Errorf("CaseID = %q", out.Results[0].CaseID)
	}
	if out.Pagination.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want default 1", out.Pagination.CurrentPage)
	}
}

func TestParseSearch_NoMatchesIsEmptyResult(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/parse/search",
		map[string]string{"html": "<html><body><p>nothing here</p></body></html>"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Results []struct{} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 0 {
		t.Errorf("results = %d, want 0", len(out.Results))
	}
}

func TestParseSearch_BlankHTMLIs422(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/parse/search",
		map[string]string{"html": "   \n\t  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Kind        string `json:"kind"`
		Recoverable bool   `json:"recoverable"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Kind != "parse_failure" {
		t.Errorf("kind = %q, want parse_failure", out.Kind)
	}
	if !out.Recoverable {
		t.Error("parse failure should be recoverable")
	}
}

func TestParseDetail(t *testing.T) {
	s := newTestServer(t)
	html := `<html><body>
		<h1 class="case-title">Club X v. Player Y</h1>
		<span class="case-number">CAS 2023/A/12345</span>
		<div class="abstract">A doping dispute before the panel.</div>
	</body></html>`

	rec := doJSON(t, s, http.MethodPost, "/api/parse/detail",
		map[string]string{"html": html, "id": "fallback-id"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Title      string `json:"title"`
		Identifier string `json:"identifier"`
		Matter     string `json:"matter"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != "Club X v. Player Y" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.Identifier != "CAS 2023/A/12345" {
		t.Errorf("Identifier = %q", out.Identifier)
	}
}

func TestParseDetail_MissingTitleIs422(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/parse/detail",
		map[string]string{"html": "<html><body><p>text only</p></body></html>", "id": "x"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
}

func TestCitations(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/citations",
		map[string]string{"text": "See CAS 2020/A/6785 and tas 2019/o/6128, then CAS 2020/A/6785 again."})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var out struct {
		Citations []string `json:"citations"`
		Count     int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2 (deduplicated): %v", out.Count, out.Citations)
	}
	if out.Citations[0] != "CAS 2020/A/6785" || out.Citations[1] != "TAS 2019/O/6128" {
		t.Errorf("citations = %v", out.Citations)
	}
}

func TestChunk(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"text":       strings.Repeat("Each sentence carries a handful of words for the splitter. ", 60),
		"parent_id":  "doc-1",
		"max_tokens": 50,
	}
	rec := doJSON(t, s, http.MethodPost, "/api/chunk", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Count  int `json:"count"`
		Chunks []struct {
			ParentID string `json:"parent_id"`
			Position int    `json:"position"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count < 2 {
		t.Fatalf("count = %d, want multiple chunks", out.Count)
	}
	for i, c := range out.Chunks {
		if c.ParentID != "doc-1" {
			t.Errorf("chunk %d parent = %q", i, c.ParentID)
		}
		if c.Position != i {
			t.Errorf("chunk %d position = %d", i, c.Position)
		}
	}
}

func TestChunk_BadOverlapIs422(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/chunk", map[string]any{
		"text":           "some text",
		"max_tokens":     10,
		"overlap_tokens": 10,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "payload.exe")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, "binary junk")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
}

func TestExtract_MarkdownUpload(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "award.md")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, "# Arbitral Award\n\nThe panel rules as follows.\n")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Title string  `json:"title"`
		Text  string  `json:"text"`
		Conf  float64 `json:"confidence"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != "Arbitral Award" {
		t.Errorf("Title = %q", out.Title)
	}
	if !strings.Contains(out.Text, "panel rules") {
		t.Errorf("Text = %q", out.Text)
	}
}

func TestFetch_ReturnsStaticPage(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="case-item">CAS 2021/A/7500 A v. B</div></body></html>`))
	}))
	defer src.Close()

	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/fetch", map[string]string{"url": src.URL})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		HTML       string `json:"html"`
		StatusCode int    `json:"status_code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.StatusCode != 200 || !strings.Contains(out.HTML, "case-item") {
		t.Errorf("page = %+v", out)
	}
}

func TestRender_DisabledIs503(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/render",
		map[string]string{"url": "https://example.com"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body = %s", rec.Code, rec.Body.String())
	}
}

func TestRender_BadURLIs400(t *testing.T) {
	s := newTestServer(t)
	for _, u := range []string{"", "not-a-url", "ftp://example.com/x"} {
		rec := doJSON(t, s, http.MethodPost, "/api/render", map[string]string{"url": u})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("url %q: status = %d, want 400", u, rec.Code)
		}
	}
}
