package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/stepwise/pkg/adapters/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds the graceful shutdown of Serve.
const ShutdownTimeout = 5 * time.Second

// Handler returns the HTTP API of the environment. Metrics are exposed on
// /metrics when gatherer is not nil.
func (e *Env) Handler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Mount("/", httpAdapter.NewHandler(e.Manager, httpAdapter.WithLogger(e.Logger)))
	return r
}

// Serve runs the HTTP API on addr until ctx is cancelled.
func (e *Env) Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Handler(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		e.Logger.Info("starting server", "addr", addr, "machines", e.Settings.Machines())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		e.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.Logger.Error("graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			return srv.Close()
		}
		e.Logger.Info("server stopped gracefully")
		return nil
	}
}
