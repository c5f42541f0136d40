// Package ui serves the QR widget in the browser.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/qrsheet/internal/ui/router"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/internal/widget"
)

// Server is the main UI server.
type Server struct {
	registry       *session.Registry
	port           int
	maxUploadBytes int64
	isDev          bool
	logger         *slog.Logger
	onListen       func(url string)
}

// Config holds configuration for the UI server.
type Config struct {
	// Widget is the template for every browser's widget.
	Widget         widget.Options
	Port           int
	SessionSecret  string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	IsDev          bool
	Logger         *slog.Logger
	// OnListen is called with the base URL once the port is bound.
	OnListen func(url string)
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(0) // browser session cookie; widgets live in memory only
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		registry: session.NewRegistry(session.Config{
			Store:  sessionStore,
			TTL:    cfg.SessionTTL,
			Widget: cfg.Widget,
			Logger: logger,
		}),
		port:           cfg.Port,
		maxUploadBytes: cfg.MaxUploadBytes,
		isDev:          cfg.IsDev,
		logger:         logger,
		onListen:       cfg.OnListen,
	}
}

// Handler builds the HTTP handler of the server.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, s.registry, router.Options{
		MaxUploadBytes: s.maxUploadBytes,
		Logger:         s.logger,
		IsDev:          s.isDev,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	url := fmt.Sprintf("http://localhost:%d", ln.Addr().(*net.TCPAddr).Port)
	s.logger.Info("starting UI server", "addr", url)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Evict idle widgets; closes all of them on shutdown
	eg.Go(func() error {
		return s.registry.Run(egctx)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	if s.onListen != nil {
		s.onListen(url)
	}

	return eg.Wait()
}

// Registry returns the server's widget registry.
func (s *Server) Registry() *session.Registry {
	return s.registry
}
