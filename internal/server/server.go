// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects repositories, services,
// handlers, middleware and routes, and owns every long-lived resource:
//
//	config → sqlite.DB ─────────────┐
//	       → redis (optional) → session.Store ─→ AppService → AppHandler
//	       → finder (Gemini or disabled) ─────┘            ↘ Scheduler
//	       → TokenService, PasswordService → AuthService → AuthHandler
//
// This is the "composition root" pattern: all dependencies are wired in
// New, rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/sakif/frelance/internal/auth"
	"github.com/sakif/frelance/internal/config"
	"github.com/sakif/frelance/internal/finder"
	"github.com/sakif/frelance/internal/handler"
	"github.com/sakif/frelance/internal/middleware"
	sqliteRepo "github.com/sakif/frelance/internal/repository/sqlite"
	"github.com/sakif/frelance/internal/scheduler"
	"github.com/sakif/frelance/internal/service"
	"github.com/sakif/frelance/internal/session"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the Redis client, if any. Both
// are closed by Close, which Start calls after a graceful shutdown.
type Server struct {
	router    *chi.Mux
	config    *config.Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	rdb       *redis.Client // nil when sessions live in memory
	scheduler *scheduler.Scheduler
}

// New opens the database (and Redis, when configured), builds the services
// and registers the routes.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with the
// modernc sqlite driver package.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.rdb = rdb
		store = session.NewRedisStore(rdb, session.RedisOptions{LockTTL: sessionLockTTL(cfg)})
		logger.Info("session state shared through redis")
	} else {
		logger.Warn("REDIS_URL not set; session state is kept in memory and lost on restart")
	}

	var jobFinder finder.Finder = finder.Disabled{}
	if cfg.GeminiAPIKey != "" {
		jobFinder = finder.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.GeminiTimeout)
	} else {
		logger.Warn("GEMINI_API_KEY not set; every search will fail")
	}

	if err := s.setupRoutes(store, jobFinder); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// sessionLockTTL keeps a session lock alive for longer than the slowest
// search, so a second event for the same user cannot overtake it.
func sessionLockTTL(cfg *config.Config) time.Duration {
	return max(2*time.Minute, cfg.GeminiTimeout+time.Minute)
}

// Handler returns the root handler, with CORS applied. Tests serve it with
// httptest.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(s.router)
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz
//	GET  /auth/github/login, /auth/github/callback   (when GitHub is configured)
//	POST /auth/signup, /auth/signin, /auth/logout
//	     /api/...                                    (see below)
//	GET  /*                                          (front end, when STATIC_DIR is set)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID, RealIP: tag the request and fix up RemoteAddr for the rate limiter
//  2. Logger: sees the final status of everything below it
//  3. Recoverer: turns panics into 500s
//  4. Visitor, OptionalAuth: identify the caller on /auth and /api
func (s *Server) setupRoutes(store session.Store, jobFinder finder.Finder) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	repos := service.Repositories{
		Profiles:      s.db,
		Projects:      s.db,
		Forum:         s.db,
		Subscriptions: s.db,
		Activities:    s.db,
		History:       s.db,
	}
	appService := service.NewAppService(repos, jobFinder, store, s.logger)
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	s.scheduler = scheduler.New(appService, s.config.ExpirySchedule, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	} else {
		s.logger.Warn("GitHub credentials not set; GitHub sign-in is disabled")
	}

	appHandler := handler.NewAppHandler(appService, s.logger)
	authHandler := handler.NewAuthHandler(github, authService, appService, tokens, s.config.SecureCookies, s.logger)
	healthHandler := handler.NewHealthHandler(s.health)
	limiter := middleware.NewRateLimiter(s.config.SearchRatePerMinute, s.config.SearchBurst)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	identify := func(r chi.Router) {
		r.Use(auth.Visitor(s.config.SecureCookies))
		r.Use(auth.OptionalAuth(tokens))
	}

	s.router.Route("/auth", func(r chi.Router) {
		identify(r)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/signin", authHandler.HandleSignIn)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		identify(r)

		// Open to anonymous visitors.
		r.Get("/session", authHandler.HandleSession)
		r.Get("/state", appHandler.HandleState)
		r.Get("/view", appHandler.HandleView)
		r.Post("/view", appHandler.HandleNavigate)
		r.Post("/view/back", appHandler.HandleBack)
		r.Get("/search/options", appHandler.HandleSearchOptions)
		r.With(limiter.Limit).Post("/search", appHandler.HandleSearch)
		r.Get("/results", appHandler.HandleResults)
		r.Post("/results/sort", appHandler.HandleSort)
		r.Post("/results/page", appHandler.HandlePage)
		r.Post("/results/select", appHandler.HandleSelect)
		r.Get("/threads", appHandler.HandleListThreads)
		r.Get("/plans", appHandler.HandlePlans)

		// Signed-in users only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/profile", appHandler.HandleGetProfile)
			r.Put("/profile", appHandler.HandleSaveProfile)
			r.Get("/projects", appHandler.HandleListProjects)
			r.Post("/projects", appHandler.HandleAddProject)
			r.Put("/projects/{id}", appHandler.HandleUpdateProject)
			r.Delete("/projects/{id}", appHandler.HandleDeleteProject)
			r.Post("/projects/{id}/timer/{action}", appHandler.HandleTimer)
			r.Post("/threads", appHandler.HandleAddThread)
			r.Post("/threads/{id}/replies", appHandler.HandleAddReply)
			r.Get("/subscription", appHandler.HandleGetSubscription)
			r.Post("/subscription", appHandler.HandleSubscribe)
			r.Get("/activities", appHandler.HandleActivities)
			r.Post("/activities/documents", appHandler.HandleLogDocument)
			r.Get("/history", appHandler.HandleHistory)
			r.Get("/dashboard", appHandler.HandleDashboard)
		})
	})

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
	return nil
}

// health checks the database and, when used, Redis.
func (s *Server) health(ctx context.Context) map[string]error {
	checks := map[string]error{"database": s.db.Ping(ctx)}
	if s.rdb != nil {
		checks["redis"] = s.rdb.Ping(ctx).Err()
	}
	return checks
}

// Close releases the database and Redis connections.
func (s *Server) Close() error {
	var errs []error
	if s.rdb != nil {
		errs = append(errs, s.rdb.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

// Start starts the HTTP server and the expiry sweep, and handles graceful
// shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Stop the sweep, then close Redis and the database
func (s *Server) Start() error {
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer s.scheduler.Stop()

	// WriteTimeout outlasts the finder's own timeout so a slow search
	// still gets its answer written.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.config.GeminiTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
