package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edulingo/practice-engine/internal/access"
	"github.com/edulingo/practice-engine/internal/practice"
)

// Content-management handlers (editor/admin). These are thin CRUD: all
// business rules live in the stores and the service.

func PutQuestionHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q practice.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutQuestion(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, q)
	}
}

func DeleteQuestionHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PutTestHandler(store practice.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t practice.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, t)
	}
}

func PutCategoryHandler(store *access.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c access.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutCategory(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, c)
	}
}

func PutCourseHandler(store *access.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c access.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, c)
	}
}

func EnrollHandler(store *access.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"userId"`
			CourseID string `json:"courseId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.CourseID == "" {
			http.Error(w, "userId and courseId required", http.StatusBadRequest)
			return
		}
		if err := store.Enroll(r.Context(), req.UserID, req.CourseID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
