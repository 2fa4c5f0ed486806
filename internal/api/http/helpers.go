package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edulingo/practice-engine/internal/practice"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain conditions to status codes. Infrastructure failures
// become a generic 500 without leaking internals.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, practice.ErrRequiresAuth):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, practice.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, practice.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, practice.ErrInactive):
		http.Error(w, "test is not active", http.StatusGone)
	case errors.Is(err, practice.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
