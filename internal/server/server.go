// Package server wires the application together: storage backend, services,
// handlers, middleware, and routes, plus the HTTP server lifecycle. It is
// the composition root — nothing below this package constructs its own
// dependencies.
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

	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/handler"
	"github.com/sakif/snipvault/internal/middleware"
	"github.com/sakif/snipvault/internal/repository"
	"github.com/sakif/snipvault/internal/repository/postgres"
	"github.com/sakif/snipvault/internal/repository/sqlite"
	"github.com/sakif/snipvault/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	JWTSecret string

	// DBPath selects the SQLite file; DatabaseURL, when set, selects
	// Postgres instead.
	DBPath      string
	DatabaseURL string

	// GitHub OAuth is optional: all three must be set to enable it.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the storage backend; the backend is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  repository.Store
}

// New assembles the full dependency chain: store → services → handlers →
// routes. Services receive repository interfaces, handlers receive
// services; nothing skips a layer.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks the storage backend: Postgres when DATABASE_URL is set,
// the SQLite file otherwise.
func openStore(cfg Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres backend")
		store, err := postgres.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return store, nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.store, tokens, auth.NewPasswordService(), s.logger)
	snippetService := service.NewSnippetService(s.store, s.logger)
	publicService := service.NewPublicService(s.store, s.logger)
	tagService := service.NewTagService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	publicHandler := handler.NewPublicHandler(publicService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)

	// Global middleware, in order: request ID, real IP, panic recovery,
	// request logging, CORS.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS)

	s.router.Get("/", handler.HandleRoot)
	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	// Anonymous browsing. OptionalAuth lets owners see their own private
	// snippets by ID without changing anything for everyone else.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/public/snippets", publicHandler.HandleList)
		r.Get("/public/snippets/{id}", publicHandler.HandleGet)
		r.Get("/tags", tagHandler.HandleList)
	})

	// Everything below requires a valid bearer token.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users/me", authHandler.HandleMe)

		r.Route("/snippets", func(r chi.Router) {
			r.Get("/", snippetHandler.HandleList)
			r.Post("/", snippetHandler.HandleCreate)
			r.Get("/{id}", snippetHandler.HandleGet)
			r.Put("/{id}", snippetHandler.HandleUpdate)
			r.Delete("/{id}", snippetHandler.HandleDelete)
			r.Patch("/{id}/toggle-public", snippetHandler.HandleTogglePublic)
		})

		r.Post("/tags", tagHandler.HandleCreate)
	})

	return nil
}

// Handler exposes the router so tests can drive the full stack through
// httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the storage backend. Start calls this itself; it exists
// for callers that use Handler() directly.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
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
