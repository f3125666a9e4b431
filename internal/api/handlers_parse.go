package api

import (
	"encoding/json"
	"net/http"

	"github.com/caslex/caslex/internal/scrape"
)

type parseSearchRequest struct {
	HTML string `json:"html"`
}

func (s *Server) handleParseSearch(w http.ResponseWriter, r *http.Request) {
	var req parseSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.HTML == "" {
		jsonError(w, "html is required", http.StatusBadRequest)
		return
	}

	results, err := scrape.ParseSearchResults(req.HTML)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}
	pagination := scrape.ExtractPagination(req.HTML)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"results":    results,
		"pagination": pagination,
	})
}

type parseDetailRequest struct {
	HTML string `json:"html"`
	ID   string `json:"id"`
}

func (s *Server) handleParseDetail(w http.ResponseWriter, r *http.Request) {
	var req parseDetailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.HTML == "" {
		jsonError(w, "html is required", http.StatusBadRequest)
		return
	}

	detail, err := scrape.ParseDetailPage(req.HTML, req.ID)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

type citationsRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	var req citationsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	citations := scrape.ExtractCaseNumbers(req.Text)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"citations": citations,
		"count":     len(citations),
	})
}

// decodeJSON parses the request body into dst and writes the 400 itself
// on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return err
	}
	return nil
}
