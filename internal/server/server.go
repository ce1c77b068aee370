// Package server provides the HTTP API that turns a GitHub account into a résumé.
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

	"github.com/google/uuid"

	"github.com/jonathan/github-resume/internal/compile"
	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/db"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/server/ratelimit"
)

// Archive stores generated documents. *db.DB implements it.
type Archive interface {
	SaveDocument(ctx context.Context, login, kind, filename, content string) (uuid.UUID, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*db.Document, error)
}

var (
	_ Archive               = (*db.DB)(nil)
	_ ratelimit.WindowStore = (*db.DB)(nil)
)

// Options are the collaborators of a Server. GitHub, Auth and Limiter are
// required; a nil LaTeX, Printer or Archive disables the routes that need it.
type Options struct {
	Port           int
	GitHub         github.DataSource
	Auth           middleware.Authenticator
	Limiter        ratelimit.Store
	LaTeX          compile.Compiler
	Printer        compile.Compiler
	Archive        Archive
	Concurrency    int
	AllowedOrigins []string
	Clock          func() time.Time
	Logger         *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	httpServer     *http.Server
	github         github.DataSource
	governor       *middleware.Governor
	latex          compile.Compiler
	printer        compile.Compiler
	archive        Archive
	concurrency    int
	allowedOrigins map[string]bool
	now            func() time.Time
	logger         *slog.Logger
	closers        []func()
}

// New creates a server from explicit collaborators.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = github.DefaultConcurrency
	}

	s := &Server{
		github: opts.GitHub,
		governor: &middleware.Governor{
			Auth:    opts.Auth,
			Limiter: opts.Limiter,
			Logger:  logger,
		},
		latex:          opts.LaTeX,
		printer:        opts.Printer,
		archive:        opts.Archive,
		concurrency:    concurrency,
		allowedOrigins: make(map[string]bool),
		now:            now,
		logger:         logger,
	}
	for _, origin := range opts.AllowedOrigins {
		s.allowedOrigins[origin] = true
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // compilation can take two engine passes
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Open wires a server from configuration: the GitHub REST client, JWT
// sessions, the rate-limit store (Postgres when DATABASE_URL is set), the
// document archive and the compilers that are enabled and installed.
func Open(ctx context.Context, cfg *config.ServerConfig, jwtCfg *config.JWTConfig) (*Server, error) {
	client, err := github.NewClient(&github.Options{BaseURL: cfg.GitHubAPIURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	opts := Options{
		Port:           cfg.Port,
		GitHub:         client,
		Auth:           middleware.NewJWTAuthenticator(NewJWTService(jwtCfg).AsTokenValidator()),
		Concurrency:    cfg.LanguageFetchConcurrency,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	var database *db.DB
	var windows ratelimit.WindowStore
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		windows = database
		opts.Archive = database
	}

	opts.Limiter, err = ratelimit.NewStore(ratelimit.LoadConfig(), windows)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}

	if cfg.CompilerEnabled {
		latex := compile.NewPDFLaTeX()
		if err := latex.Available(); err != nil {
			slog.Warn("LaTeX compilation disabled", "error", err)
		} else {
			opts.LaTeX = latex
		}
	}
	if cfg.ChromeEnabled {
		printer := compile.NewChromePrinter(compile.DefaultTimeout)
		if err := printer.Available(); err != nil {
			slog.Warn("PDF printing disabled", "error", err)
		} else {
			opts.Printer = printer
		}
	}

	s := New(opts)
	if database != nil {
		s.closers = append(s.closers, database.Close)
	}
	return s, nil
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.close()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
}
