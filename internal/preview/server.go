// Package preview serves a generated site over HTTP for local viewing.
package preview

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RebuildFunc regenerates the site in place
type RebuildFunc func(ctx context.Context) error

// Server serves the site root with caching disabled, so a rebuild is visible
// on the next page load.
type Server struct {
	router  chi.Router
	fsys    fs.FS
	log     *zap.Logger
	rebuild RebuildFunc

	// rebuildMu serializes rebuilds so one run owns the output tree at a time
	rebuildMu sync.Mutex
}

// Option configures a Server
type Option func(*Server)

// WithRebuild enables POST /-/rebuild
func WithRebuild(fn RebuildFunc) Option {
	return func(s *Server) {
		s.rebuild = fn
	}
}

// NewServer creates a preview server for fsys
func NewServer(fsys fs.FS, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{fsys: fsys, log: log}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(noStore)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if s.rebuild != nil {
		r.Post("/-/rebuild", s.handleRebuild)
	}

	fileServer := http.FileServerFS(s.fsys)
	r.Get("/*", fileServer.ServeHTTP)
	r.Head("/*", fileServer.ServeHTTP)

	return r
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if err := s.rebuild(r.Context()); err != nil {
		s.log.Error("Rebuild failed", zap.Error(err))
		http.Error(w, "rebuild failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// noStore disables browser caching for every response
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
