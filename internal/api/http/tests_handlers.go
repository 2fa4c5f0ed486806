package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/edulingo/practice-engine/internal/auth/middleware"
	"github.com/edulingo/practice-engine/internal/practice"
)

// ListTestsHandler serves the public test listing. Anonymous viewers get
// free active tests; authenticated viewers get all active tests.
func ListTestsHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		list, err := svc.ListTests(r.Context(), p, r.URL.Query().Get("category"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []practice.TestSummary{}
		}
		writeJSON(w, list)
	}
}

// BeginAttemptHandler returns a test with questions expanded and answer
// keys stripped.
func BeginAttemptHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		view, err := svc.BeginAttempt(r.Context(), p, chi.URLParam(r, "testID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// SubmitAttemptHandler grades a submission and returns the freshly
// persisted result record.
func SubmitAttemptHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		var req struct {
			Answers map[string]string `json:"answers"` // question id -> option text
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.SubmitAttempt(r.Context(), p, chi.URLParam(r, "testID"), req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(res)
	}
}

func GetResultHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		res, err := svc.GetResult(r.Context(), p, chi.URLParam(r, "resultID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// ReviewResultHandler returns the record plus the full questions, answer
// keys included, for post-submission review.
func ReviewResultHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		review, err := svc.ReviewResult(r.Context(), p, chi.URLParam(r, "resultID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, review)
	}
}

func ListMyResultsHandler(svc *practice.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := authmw.PrincipalFromContext(r.Context())
		list, err := svc.ListMyResults(r.Context(), p)
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []practice.Result{}
		}
		writeJSON(w, list)
	}
}
