package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"redatlas/internal/incident/handler"
	incidentmetrics "redatlas/internal/incident/metrics"
	"redatlas/internal/incident/ingest"
	"redatlas/internal/incident/service"
	"redatlas/internal/incident/store"
	"redatlas/internal/platform/config"
	"redatlas/internal/platform/httpserver"
	"redatlas/internal/platform/logger"
	"redatlas/internal/platform/metrics"
	"redatlas/internal/platform/middleware"
	"redatlas/internal/platform/ratelimit"
)

// main wires the dataset loader, the record store, the query engine, and the
// HTTP surface. Query logic lives in internal/incident; main only assembles
// and supervises the lifecycle.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	st := store.NewInMemoryStore()
	queryMetrics := incidentmetrics.New()

	// A failed load leaves the store not ready: the server still comes up
	// and answers /readyz with 503 so orchestrators see a live-but-unready
	// process instead of a crash loop.
	loader := ingest.NewLoader(log, cfg.DatasetYear)
	records, localityPop, stats, err := loader.LoadFile(cfg.DatasetPath)
	if err != nil {
		log.Error("dataset load failed", "path", cfg.DatasetPath, "error", err)
	} else if err := st.Load(records, localityPop); err != nil {
		log.Error("store load failed", "path", cfg.DatasetPath, "error", err)
	} else {
		queryMetrics.SetRecordsLoaded(st.Count())
		log.Info("dataset loaded",
			"path", cfg.DatasetPath,
			"rows", stats.Rows,
			"loaded", stats.Loaded,
			"skipped_bad", stats.SkippedBad,
			"skipped_off_year", stats.SkippedOff,
		)
	}

	svc, err := service.New(st,
		service.WithLogger(log),
		service.WithMetrics(queryMetrics),
	)
	if err != nil {
		log.Error("service init failed", "error", err)
		os.Exit(1)
	}

	if st.Ready() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := svc.WarmUp(warmCtx); err != nil {
			log.Warn("baseline warmup failed", "error", err)
		}
		cancel()
	}

	httpMetrics := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(httpMetrics))
	if cfg.RateLimit > 0 {
		router.Use(ratelimit.Middleware(ratelimit.New(cfg.RateLimit, time.Minute)))
	}

	handler.New(svc, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
