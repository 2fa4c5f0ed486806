package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/edulingo/practice-engine/internal/access"
	api "github.com/edulingo/practice-engine/internal/api/http"
	authmw "github.com/edulingo/practice-engine/internal/auth/middleware"
	"github.com/edulingo/practice-engine/internal/config"
	"github.com/edulingo/practice-engine/internal/db"
	"github.com/edulingo/practice-engine/internal/practice"
	"github.com/edulingo/practice-engine/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := practice.NewSQLStore(dbh)
	accessStore := access.NewSQLStore(dbh)
	gate := access.NewGate(accessStore)
	svc := practice.NewService(store, gate)
	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh))
	r.Post("/auth/login", api.LoginHandler(authSvc, dbh))

	// Public listings; an authenticated viewer sees paid tests too.
	r.Group(func(pr chi.Router) {
		pr.Use(authSvc.OptionalJWT())
		pr.Get("/tests", api.ListTestsHandler(svc))
		pr.Get("/categories/{name}/tests", api.CategoryTestsHandler(accessStore, svc))
	})

	// Protected API (JWT -> role in context -> RBAC).
	r.Group(func(pr chi.Router) {
		pr.Use(authSvc.JWTMiddleware())

		pr.With(rbac.Require("access:check")).
			Get("/categories/{name}/access", api.CheckAccessHandler(gate))

		// Student flow
		pr.With(rbac.Require("attempt:begin")).
			Post("/tests/{testID}/attempt", api.BeginAttemptHandler(svc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/tests/{testID}/submit", api.SubmitAttemptHandler(svc))
		pr.With(rbac.Require("result:view-own")).
			Get("/results", api.ListMyResultsHandler(svc))
		pr.With(rbac.Require("result:view-own")).
			Get("/results/{resultID}", api.GetResultHandler(svc))
		pr.With(rbac.Require("result:view-own")).
			Get("/results/{resultID}/review", api.ReviewResultHandler(svc))

		// Content management (editor/admin)
		pr.With(rbac.Require("question:manage")).
			Post("/questions", api.PutQuestionHandler(store))
		pr.With(rbac.Require("question:manage")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))
		pr.With(rbac.Require("test:manage")).
			Post("/admin/tests", api.PutTestHandler(store))
		pr.With(rbac.Require("category:manage")).
			Post("/categories", api.PutCategoryHandler(accessStore))
		pr.With(rbac.Require("course:manage")).
			Post("/courses", api.PutCourseHandler(accessStore))
		pr.With(rbac.Require("enrollment:manage")).
			Post("/enrollments", api.EnrollHandler(accessStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin makes sure the configured admin account exists. Skipped when no
// password hash is configured.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id,username,password_hash,role,created_at) VALUES ($1,$2,$3,'admin',$4)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
