package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/caslex/caslex/internal/chunker"
	"github.com/caslex/caslex/internal/extract"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extract.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	fn, err := extract.ForFilename(filename)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}
	result, err := fn(data)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":   filename,
		"title":      result.Title,
		"text":       result.Text,
		"page_count": result.PageCount,
		"confidence": result.Confidence,
	})
}

type chunkRequest struct {
	Text           string `json:"text"`
	ParentID       string `json:"parent_id"`
	Page           int    `json:"page"`
	Section        string `json:"section"`
	MaxTokens      int    `json:"max_tokens"`
	OverlapTokens  int    `json:"overlap_tokens"`
	TokenizerModel string `json:"tokenizer_model"`
	// BySections splits award text at its structural sections before
	// applying the token budget.
	BySections bool `json:"by_sections"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	cfg := chunker.DefaultConfig()
	cfg.MaxTokens = s.cfg.ChunkMaxTokens
	cfg.OverlapTokens = s.cfg.ChunkOverlapTokens
	cfg.TokenizerModel = s.cfg.TokenizerModel
	if req.MaxTokens > 0 {
		cfg.MaxTokens = req.MaxTokens
	}
	if req.OverlapTokens > 0 {
		cfg.OverlapTokens = req.OverlapTokens
	}
	if req.TokenizerModel != "" {
		cfg.TokenizerModel = req.TokenizerModel
	}
	// A caller shrinking max_tokens below the server's default overlap
	// should not be rejected; shrink the inherited overlap with it.
	if req.OverlapTokens == 0 && cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = cfg.MaxTokens / 10
	}

	c, err := chunker.New(cfg)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	var chunks []chunker.Chunk
	if req.BySections {
		chunks = c.FragmentBySections(req.Text, req.ParentID)
	} else {
		chunks = c.Fragment(req.Text, req.ParentID, req.Page, req.Section)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"chunks": chunks,
		"count":  len(chunks),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
