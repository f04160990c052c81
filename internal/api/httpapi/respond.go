package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/errs"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps the error kind to an HTTP status. Storage and unknown
// errors become an opaque 500: internals stay out of responses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, errs.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, errs.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrAuth):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, errs.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, err.Error()
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Validationf("invalid JSON body: %v", err)
	}
	return nil
}
