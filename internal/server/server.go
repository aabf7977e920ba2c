// Package server собирает HTTP сервер движка: маршруты, middleware и канал сессий.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/playsync/internal/engine"
	"github.com/iudanet/playsync/internal/server/handlers"
	"github.com/iudanet/playsync/internal/server/middleware"
)

const healthPath = "/api/v1/health"

// Config содержит параметры HTTP сервера
type Config struct {
	Addr            string
	JWT             handlers.JWTConfig
	Session         handlers.SessionConfig
	RateLimit       int
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
}

// Server HTTP сервер движка
type Server struct {
	logger  *slog.Logger
	http    *http.Server
	hub     *handlers.SessionHub
	limiter *middleware.RateLimiter
	cancel  func()
	cfg     Config
}

// New создает сервер и подписывает канал сессий на коммиты движка
func New(cfg Config, eng *engine.Engine, pinger handlers.Pinger, logger *slog.Logger) *Server {
	s := &Server{
		logger: logger,
		cfg:    cfg,
		hub:    handlers.NewSessionHub(logger, cfg.Session),
	}
	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
	}

	s.cancel = eng.Subscribe(s.hub.Publish)
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(eng, pinger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler возвращает корневой http.Handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes(eng handlers.Engine, pinger handlers.Pinger) http.Handler {
	health := handlers.NewHealthHandler(s.logger, pinger)
	entities := handlers.NewEntityHandler(s.logger, eng)
	conflicts := handlers.NewConflictHandler(s.logger, eng)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.RequestLogger(s.logger, healthPath))

	r.Get(healthPath, health.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(s.logger, s.cfg.JWT))
		if s.limiter != nil {
			r.Use(middleware.RateLimitMiddleware(s.limiter, s.logger))
		}

		r.Route("/api/v1/entities", func(r chi.Router) {
			r.Post("/", entities.Create)
			r.Get("/", entities.List)
			r.Get("/{id}", entities.Get)
			r.Put("/{id}", entities.Save)
			r.Get("/{id}/conflicts", entities.History)
		})

		r.Get("/api/v1/conflicts/{id}", conflicts.Get)
		r.Post("/api/v1/conflicts/{id}/resolve", conflicts.Resolve)
		r.Get("/api/v1/analytics/conflicts", conflicts.Analytics)

		r.Get("/api/v1/session", s.hub.ServeWS)
	})

	return r
}

// Run слушает адрес до отмены ctx, затем корректно завершает работу
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.release()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server")
	err := s.http.Shutdown(shutdownCtx)
	// Shutdown не ждет hijacked соединения, поэтому сессии закрываются явно
	s.hub.Close()
	s.release()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

func (s *Server) release() {
	s.cancel()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
