package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-listening-eras/internal/history"
	"github.com/justestif/go-listening-eras/internal/naming"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultRedirectURI must match the Spotify app configuration.
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"
)

// ServerConfig holds server configuration. SpotifyID/SpotifySecret may be
// empty, in which case OAuth and playlist export are disabled. NamingClient
// may be nil, in which case era naming uses the local fallback.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	SpotifyID      string
	SpotifySecret  string
	RedirectURI    string
	NamingClient   naming.Client
	Logger         *log.Logger
}

// Server is the HTTP server for the listening eras API.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
	logger   *log.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	// Spotify authenticator, only when credentials are configured.
	var auth *spotifyauth.Authenticator
	if cfg.SpotifyID != "" && cfg.SpotifySecret != "" {
		auth = spotifyauth.New(
			spotifyauth.WithClientID(cfg.SpotifyID),
			spotifyauth.WithClientSecret(cfg.SpotifySecret),
			spotifyauth.WithRedirectURL(cfg.RedirectURI),
			spotifyauth.WithScopes(
				spotifyauth.ScopePlaylistModifyPublic,
				spotifyauth.ScopePlaylistModifyPrivate,
			),
		)
	}

	sessions := NewSessionStore()
	parser := history.NewParser(logger)
	namer := naming.NewNamer(cfg.NamingClient, naming.DefaultRetryPolicy(), logger)
	handlers := NewHandlers(logger, parser, sessions, namer, auth)

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		sessions: sessions,
		handlers: handlers,
		logger:   logger,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/health", h.Health)
	s.router.Post("/upload", h.Upload)

	s.router.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/progress", h.Progress)
		r.Get("/results", h.Results)
		r.Get("/eras/{eraID}", h.EraDetail)
		r.Post("/eras/{eraID}/export", h.ExportEra)
	})

	s.router.Get("/auth/login", h.Login)
	s.router.Get("/callback", h.Callback)
	s.router.Post("/auth/logout", h.Logout)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
