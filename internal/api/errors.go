package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/caslex/caslex/internal/errclass"
)

// writeClassifiedError maps the pipeline error taxonomy onto HTTP status
// codes. Recoverable failures get statuses a caller may retry on;
// permanent input defects are 400s.
func writeClassifiedError(w http.ResponseWriter, err error) {
	var ce *errclass.Error
	if !errors.As(err, &ce) {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch ce.Kind {
	case errclass.ParseFailure, errclass.ChunkingFailure:
		status = http.StatusUnprocessableEntity
	case errclass.RenderFailure, errclass.RemoteServerError:
		status = http.StatusBadGateway
	case errclass.Timeout:
		status = http.StatusGatewayTimeout
	case errclass.RateLimited:
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", strconv.Itoa(ce.RetryAfterSeconds))
	case errclass.ComponentUnavailable:
		status = http.StatusServiceUnavailable
	case errclass.PDFCorrupted, errclass.PDFPasswordProtected, errclass.PDFEmpty,
		errclass.CitationFormatInvalid:
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":       ce.Message,
		"kind":        string(ce.Kind),
		"recoverable": ce.Recoverable,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
