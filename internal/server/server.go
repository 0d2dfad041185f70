// Package server wires the HTTP surface of the site: public content and
// member APIs, session-guarded admin APIs, the embedded admin pages, and
// operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/civicsite/civicsite/internal/handler"
	"github.com/civicsite/civicsite/internal/openapi"
	"github.com/civicsite/civicsite/internal/ratelimit"
	"github.com/civicsite/civicsite/internal/server/middleware"
	"github.com/civicsite/civicsite/internal/service"
	"github.com/civicsite/civicsite/internal/store"
	"github.com/civicsite/civicsite/internal/ui"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	PublicURL       string
	RequestsPerMin  int
	SecureCookies   bool
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		PublicURL:       "http://localhost:8080",
		RequestsPerMin:  300,
		SecureCookies:   true,
		Version:         "dev",
	}
}

// Server is the top-level HTTP server. It owns the Chi router, the store,
// and the authentication service.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *service.AuthService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		authSvc: authSvc,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	if s.cfg.RequestsPerMin > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RequestsPerMin, time.Minute))
	}

	// Session verification runs on every protected request. It is pure HMAC
	// work over the in-process secret, no store round trip.
	verify := func(token string) *service.Principal {
		return service.VerifyTokenLite(s.authSvc.Secret(), token)
	}

	authHandler := handler.NewAuthHandler(s.authSvc, ratelimit.New(), s.logger, s.cfg.SecureCookies)
	contentHandler := handler.NewContentHandler(s.store, s.logger)
	memberHandler := handler.NewMemberHandler(s.store, s.logger)
	eventHandler := handler.NewEventHandler(s.store, s.logger)

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI document (no auth required) ---
	r.Get("/openapi.json", s.handleOpenAPI(openapi.Spec(s.cfg.Version, s.cfg.PublicURL)))

	// --- API routes ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Public reads and member self-registration.
		r.Get("/settings", contentHandler.GetSettings)
		r.Get("/content", contentHandler.GetContent)
		r.Get("/members", memberHandler.ListPublic)
		r.Post("/members", memberHandler.Create)
		r.Get("/events", eventHandler.List)

		// Admin writes behind the session gate.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSessionAPI(verify))

			r.Put("/settings", contentHandler.UpdateSettings)
			r.Put("/content", contentHandler.UpdateContent)
			r.Get("/admin/members", memberHandler.ListAll)
			r.Patch("/members/{id}/visibility", memberHandler.ToggleVisibility)
			r.Post("/events", eventHandler.Create)
			r.Delete("/events/{id}", eventHandler.Delete)
		})
	})

	// --- Embedded admin pages ---
	staticFS, err := fs.Sub(ui.Static, "static")
	if err != nil {
		s.logger.Error("admin pages unavailable", "error", err)
	} else {
		r.Get("/admin/login", servePage(staticFS, "login.html"))
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(verify, "/admin/login"))
			r.Get("/admin", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, "/admin/dashboard", http.StatusFound)
			})
			r.Get("/admin/dashboard", servePage(staticFS, "dashboard.html"))
		})
	}

	s.router = r
}

func servePage(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "page not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

// handleOpenAPI serializes the document once and serves the cached bytes.
func (s *Server) handleOpenAPI(doc *openapi3.T) http.HandlerFunc {
	data, err := doc.MarshalJSON()
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the database is
// reachable, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status, httpStatus := "ok", http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := s.store.Ping(); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the database.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "version", s.cfg.Version)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
