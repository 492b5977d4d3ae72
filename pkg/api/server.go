package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
	}
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      newMux(cfg, handlers),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func newMux(cfg ServerConfig, handlers *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	sem := make(chan struct{}, max(cfg.MaxConcurrent, 1))

	mux.HandleFunc("GET /api/v1/health", withMiddleware(handlers.HandleHealth, sem, cfg))
	mux.HandleFunc("GET /api/v1/stats", withMiddleware(handlers.HandleStats, sem, cfg))
	mux.HandleFunc("GET /api/v1/datasets/{dataset}/nodes/{id}/neighbors", withMiddleware(handlers.HandleNeighbors, sem, cfg))
	mux.HandleFunc("GET /api/v1/datasets/{dataset}/nearest", withMiddleware(handlers.HandleNearest, sem, cfg))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with security headers, concurrency limiting,
// panic recovery, a request deadline, metrics and an access log line.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		route := r.Pattern
		rec := &statusRecorder{ResponseWriter: w}

		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			writeError(rec, http.StatusServiceUnavailable, "service_unavailable", "")
			requestsTotal.WithLabelValues(route, rec.code()).Inc()
			return
		}

		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("panic: %v", p)
				writeError(rec, http.StatusInternalServerError, "internal_error", "")
			}
			elapsed := time.Since(start)
			requestsTotal.WithLabelValues(route, rec.code()).Inc()
			requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			log.Printf("%s %s %s %s", r.Method, r.URL.Path, rec.code(), elapsed.Round(time.Microsecond))
		}()

		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		handler(rec, r.WithContext(ctx))
	}
}
