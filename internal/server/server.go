// Package server wires the application together: routes, middleware, and
// the HTTP server lifecycle.
//
// This is the composition root — every dependency chain is assembled in one
// place (New/setupRoutes) rather than scattered across the codebase:
//
//	config → sqlite.DB → services → handlers → routes
//
// Handlers never touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/whisperwall/internal/auth"
	"github.com/sakif/whisperwall/internal/config"
	"github.com/sakif/whisperwall/internal/credential"
	"github.com/sakif/whisperwall/internal/handler"
	"github.com/sakif/whisperwall/internal/middleware"
	sqliteRepo "github.com/sakif/whisperwall/internal/repository/sqlite"
	"github.com/sakif/whisperwall/internal/service"
)

// Server owns the router and the resources that must be torn down on
// shutdown (currently just the database connection).
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph and sets up every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the complete route table:
//
//	GET  /                    → landing page
//	GET  /login               → login form
//	POST /login               → local login
//	GET  /logout              → destroy session
//	GET  /register            → registration form
//	POST /register            → create account + login
//	GET  /secrets             → wall of secrets        (auth required)
//	GET  /submit              → submission form        (auth required)
//	POST /submit              → overwrite own secret   (auth required)
//	GET  /auth/google         → start Google sign-in   (when configured)
//	GET  /auth/google/secrets → Google callback        (when configured)
//	GET  /static/*            → assets
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Shared plumbing ===
	render, err := handler.NewRenderer(s.cfg.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	sessions, err := auth.NewSessionManager(s.cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	codec, err := credential.New(s.cfg.CredentialPolicy, s.cfg.CredentialSecret)
	if err != nil {
		return fmt.Errorf("creating credential codec: %w", err)
	}

	// === Google sign-in (optional) ===
	var googleProvider *auth.GoogleProvider
	var states *auth.StateTokens
	if s.cfg.GoogleEnabled() {
		googleProvider = auth.NewGoogleProvider(
			s.cfg.GoogleClientID,
			s.cfg.GoogleClientSecret,
			s.cfg.GoogleCallbackURL,
		)
		states, err = auth.NewStateTokens(s.cfg.SessionSecret)
		if err != nil {
			return fmt.Errorf("creating state tokens: %w", err)
		}
	} else {
		s.logger.Warn("Google sign-in not configured — /auth/google routes disabled")
	}

	// === Services and handlers ===
	authSvc := service.NewAuthService(s.db, codec, s.logger)
	secretSvc := service.NewSecretService(s.db, s.logger)

	pageHandler := handler.NewPageHandler(render, s.cfg.GoogleEnabled())
	authHandler := handler.NewAuthHandler(authSvc, sessions, googleProvider, states, render, s.logger)
	secretHandler := handler.NewSecretHandler(secretSvc, render, s.logger)

	// === Static files ===
	fileServer := http.FileServer(http.Dir(s.cfg.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Public routes ===
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get("/login", pageHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)
	s.router.Get("/register", pageHandler.HandleRegisterForm)
	s.router.Post("/register", authHandler.HandleRegister)

	if googleProvider != nil {
		s.router.Get("/auth/google", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/secrets", authHandler.HandleGoogleCallback)
	}

	// === Authenticated-only routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(sessions.RequireAuth)
		r.Get("/secrets", secretHandler.HandleSecrets)
		r.Get("/submit", secretHandler.HandleSubmitForm)
		r.Post("/submit", secretHandler.HandleSubmit)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.String("credentialPolicy", string(s.cfg.CredentialPolicy)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
