package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/edulingo/practice-engine/internal/auth/middleware"
)

// RegisterHandler creates a student account.
func RegisterHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id,username,password_hash,role,created_at) VALUES ($1,$2,$3,'student',$4)`,
			id, req.Username, string(hash), time.Now().Unix())
		if err != nil {
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "username": req.Username, "role": "student"})
	}
}

// LoginHandler verifies credentials against the users table and issues a JWT.
func LoginHandler(a *authmw.AuthService, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var id, hash, role string
		err := db.QueryRowContext(r.Context(),
			`SELECT id,password_hash,role FROM users WHERE username=$1`, req.Username).
			Scan(&id, &hash, &role)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(id, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"access_token": tok, "role": role})
	}
}
