// Package server implements the REST sink: the HTTP service that accepts
// activity entries from remote loggers and stores them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tfkr-ae/bridgelog/domain"
	"github.com/tfkr-ae/bridgelog/listener"
	"github.com/tfkr-ae/bridgelog/sink"
	"go.uber.org/zap"
)

// HealthPath answers {"status":"ok"} while the server is up.
const HealthPath = "/api/health"

// Store is everything the server needs from the activity store.
type Store interface {
	domain.ActivityRepository
	domain.StatsRepository
}

// Server routes the activity API onto a Store.
type Server struct {
	store  Store
	log    *zap.Logger
	router chi.Router
	now    func() time.Time
}

func New(store Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		store: store,
		log:   log,
		now:   time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get(HealthPath, s.handleHealth)
	r.Route(sink.ActivityPath, func(r chi.Router) {
		r.Post("/", s.handleCreateActivity)
		r.Get("/", s.handleListActivities)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener.NewResilientListener(ln, s.log))
	}()
	s.log.Info("sink server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving : %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server : %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving : %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", s.now().Sub(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
