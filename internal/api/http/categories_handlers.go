package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edulingo/practice-engine/internal/access"
	authmw "github.com/edulingo/practice-engine/internal/auth/middleware"
	"github.com/edulingo/practice-engine/internal/practice"
)

// CheckAccessHandler reports whether the caller may use a category,
// resolved by name (case-insensitive).
func CheckAccessHandler(gate *access.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		res, err := gate.CheckAccess(r.Context(), p, chi.URLParam(r, "name"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// CategoryTestsHandler lists a category's active tests, paid ones included;
// authorization for paid tests happens at attempt time, not here.
func CategoryTestsHandler(store access.Store, svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := store.CategoryByName(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeErr(w, err)
			return
		}
		p := authmw.PrincipalFromContext(r.Context())
		list, err := svc.ListTests(r.Context(), p, cat.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []practice.TestSummary{}
		}
		writeJSON(w, struct {
			Category access.Category        `json:"category"`
			Tests    []practice.TestSummary `json:"tests"`
		}{cat, list})
	}
}
