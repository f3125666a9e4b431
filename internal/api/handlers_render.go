package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/caslex/caslex/internal/render"
)

type renderRequest struct {
	URL             string `json:"url"`
	WaitSelector    string `json:"wait_selector"`
	WaitNetworkIdle *bool  `json:"wait_network_idle"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := validateRenderURL(req.URL); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.session == nil {
		jsonError(w, "browser rendering is disabled", http.StatusServiceUnavailable)
		return
	}

	opts := render.DefaultPageOptions()
	opts.WaitSelector = req.WaitSelector
	if req.WaitNetworkIdle != nil {
		opts.WaitNetworkIdle = *req.WaitNetworkIdle
	}

	page, err := s.session.RenderPage(r.Context(), req.URL, opts)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

type fetchRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := validateRenderURL(req.URL); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.fetcher.Get(r.Context(), req.URL)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

type renderSearchRequest struct {
	URL     string            `json:"url"`
	Filters map[string]string `json:"filters"`
}

func (s *Server) handleRenderSearch(w http.ResponseWriter, r *http.Request) {
	var req renderSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := validateRenderURL(req.URL); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.session == nil {
		jsonError(w, "browser rendering is disabled", http.StatusServiceUnavailable)
		return
	}

	page, err := s.session.ExecuteSearch(r.Context(), req.URL, req.Filters)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func validateRenderURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be absolute http or https")
	}
	return nil
}
