package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// Router serves /metrics, /healthz and /runs/latest for monitor mode.
func Router(rec *Recorder) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", rec.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/runs/latest", func(w http.ResponseWriter, _ *http.Request) {
		report := rec.Latest()
		if report == nil {
			http.Error(w, "no run finished yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !report.Passed() {
			w.Header().Set("X-Catalogcheck-Result", "failed")
		}
		_ = json.NewEncoder(w).Encode(report)
	})
	return r
}

// ListenAndServe serves Router(rec) on addr until ctx is cancelled, then
// shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, rec *Recorder) error {
	logger := logging.Component("metrics")
	srv := &http.Server{
		Addr:         addr,
		Handler:      Router(rec),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", "err", err)
		}
	}()

	logger.Info("status server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
