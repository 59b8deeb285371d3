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

	api "github.com/examstack/examstack/internal/api/http"
	auth "github.com/examstack/examstack/internal/auth/middleware"
	"github.com/examstack/examstack/internal/config"
	"github.com/examstack/examstack/internal/db"
	"github.com/examstack/examstack/internal/exam"
	"github.com/examstack/examstack/internal/rbac"
	syncx "github.com/examstack/examstack/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := bootstrapAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh)
	svc := exam.NewService(store, events)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Exams
		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.CreateExamHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))
		pr.With(rbac.Require("exam:update")).
			Put("/exams/{examID}", api.UpdateExamHandler(store))
		pr.With(rbac.Require("exam:delete")).
			Delete("/exams/{examID}", api.DeleteExamHandler(svc))

		// Questions
		pr.With(rbac.Require("question:view")).
			Get("/exams/{examID}/questions", api.ExamQuestionsHandler(store))
		pr.With(rbac.Require("question:create")).
			Post("/exams/{examID}/questions", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("question:import")).
			Post("/exams/{examID}/questions/import", api.ImportQuestionsHandler(store, events, cfg.MaxImportBytes))
		pr.With(rbac.Require("question:import")).
			Post("/exams/{examID}/questions/preview", api.PreviewImportHandler(store, cfg.MaxImportBytes))
		pr.With(rbac.RequireAny("question:view-full", "question:create")).
			Get("/questions/{questionID}", api.GetQuestionHandler(store))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))

		// Submissions
		pr.With(rbac.Require("submission:create")).
			Post("/exams/{examID}/submissions", api.SubmitExamHandler(svc))
		pr.With(rbac.Require("submission:view-all")).
			Get("/exams/{examID}/submissions", api.ListExamSubmissionsHandler(store))
		pr.With(rbac.Require("submission:reset")).
			Delete("/exams/{examID}/submissions", api.ResetExamSubmissionsHandler(store, events))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/mine", api.ListMySubmissionsHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.GetSubmissionHandler(svc))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/students/{studentID}/submissions", api.ListStudentSubmissionsHandler(store))

		// Users (trainer/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Audit feed (admin)
		pr.With(rbac.Require("events:view")).
			Get("/events", api.ListEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// bootstrapAdmin seeds the admin account on first boot when a hash is
// configured. Existing rows win; this never overwrites.
func bootstrapAdmin(ctx context.Context, dbh *sql.DB, username, passHash string) error {
	if passHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at)
		 VALUES ($1,$2,$3,'admin',$4)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, passHash, time.Now().Unix())
	return err
}
