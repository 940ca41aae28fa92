// Package server is the local HTTP service: asset duration lookups and trim
// commits, with the actual cut done by a background clip.Processor.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/user/trimline-cli/clip"
)

// Notifier is told when a trim job has been queued.
type Notifier interface {
	Notify()
}

// ProbeFunc returns the duration of the media file at path.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// Config configures a Server.
type Config struct {
	DB        *sql.DB
	Jobs      Notifier
	FFprobe   string    // used when Probe is nil
	Probe     ProbeFunc // defaults to clip.ProbeDuration with FFprobe
	RateLimit int       // requests per minute per client on /api; 0 disables
	Logger    zerolog.Logger
}

// Server routes the local API.
type Server struct {
	router chi.Router
	db     *sql.DB
	jobs   Notifier
	probe  ProbeFunc
	probes singleflight.Group
	logger zerolog.Logger
}

// New builds the router.
func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	probe := cfg.Probe
	if probe == nil {
		ffprobe := cfg.FFprobe
		probe = func(ctx context.Context, path string) (float64, error) {
			return clip.ProbeDuration(ctx, ffprobe, path)
		}
	}

	s := &Server{
		router: r,
		db:     cfg.DB,
		jobs:   cfg.Jobs,
		probe:  probe,
		logger: cfg.Logger,
	}
	s.routes(cfg.RateLimit)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(rateLimit int) {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if rateLimit > 0 {
			r.Use(rateLimiter(rateLimit, time.Minute))
		}
		r.Get("/health", s.handleHealth)
		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/{id}/info", s.handleAssetInfo)
		r.Post("/assets/{id}/trim", s.handleCommitTrim)
		r.Get("/assets/{id}/trims", s.handleListTrims)
		r.Get("/trims/{jobID}", s.handleTrimStatus)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
