package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	api "github.com/prepacademy/examsvc/internal/api/http"
	auth "github.com/prepacademy/examsvc/internal/auth/middleware"
	"github.com/prepacademy/examsvc/internal/config"
	"github.com/prepacademy/examsvc/internal/content"
	"github.com/prepacademy/examsvc/internal/db"
	"github.com/prepacademy/examsvc/internal/exam"
	"github.com/prepacademy/examsvc/internal/rbac"
	"github.com/prepacademy/examsvc/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}
	store := exam.NewSQLStore(dbh)

	paths := content.NewPathResolver(cfg.UploadBasePath, cfg.PublicPort)
	asm := exam.NewAssembler(store, paths, log)

	authSvc := auth.NewAuthService(cfg.AuthSecret)
	validate := validator.New()

	bs, err := storage.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("blob store")
	}

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

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, auth.LoginOpts{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Question media is public once you know the path; the paths are
	// unguessable uuids and the exam payload needs them without extra auth.
	r.Get("/uploads/*", api.ServeUploadHandler(bs))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Student flow
		pr.With(rbac.Require("exam:take")).
			Get("/api/exams/classic", api.ClassicExamHandler(asm, log))
		pr.With(rbac.Require("exam:submit")).
			Post("/api/exams/classic/submit", api.SubmitExamHandler(store, log))
		pr.With(rbac.Require("dashboard:view-own")).
			Get("/api/dashboard", api.DashboardHandler(store, log))

		// Authoring (admin)
		pr.With(rbac.Require("question:create")).
			Post("/api/admin/questions", api.CreateQuestionHandler(dbh, validate))
		pr.With(rbac.Require("question:list")).
			Get("/api/admin/questions", api.ListQuestionsHandler(dbh))
		pr.With(rbac.Require("question:update")).
			Put("/api/admin/questions/{questionID}", api.UpdateQuestionHandler(dbh, validate))
		pr.With(rbac.Require("question:delete")).
			Delete("/api/admin/questions/{questionID}", api.DeleteQuestionHandler(dbh))
		pr.With(rbac.Require("question:update")).
			Patch("/api/admin/questions/{questionID}/active", api.ToggleQuestionActiveHandler(dbh))
		pr.With(rbac.Require("upload:create")).
			Post("/api/admin/uploads", api.UploadMediaHandler(bs, cfg.UploadBasePath))
		pr.With(rbac.Require("course:order")).
			Put("/api/admin/courses/{courseID}/topic-order", api.SetTopicOrderHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "db": cfg.DBDriver}).Info("listening")
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
