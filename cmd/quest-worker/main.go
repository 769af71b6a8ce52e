// cmd/quest-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quest-workers/internal/answers"
	"quest-workers/internal/catalog"
	"quest-workers/internal/common/camunda"
	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/common/observability"
	"quest-workers/internal/scoring"

	eps "quest-workers/internal/workers/quest/evaluate-project-score"
	mt "quest-workers/internal/workers/quest/match-templates"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quest-worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting quest worker", map[string]interface{}{
		"environment":   cfg.App.Environment,
		"catalogSource": cfg.Catalog.Source,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	pgRetry := camunda.DefaultRetryConfig
	pgRetry.MaxAttempts = 15
	err = camunda.RetryWithBackoff(ctx, pgRetry, log, "PostgreSQL connection", func(ctx context.Context) error {
		if pg == nil {
			client, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			pg = client
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("PostgreSQL connected", nil)

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "Redis connection", rdb.Ping); err != nil {
		return err
	}
	log.Info("Redis connected", nil)

	deps := catalog.Deps{Postgres: pg, Redis: rdb}
	readiness := []database.Pinger{zeebe, pg, rdb}

	// --- Elasticsearch, only for the search-backed catalog ---
	if cfg.Catalog.Source == config.CatalogSourceElasticsearch {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := camunda.RetryWithBackoff(ctx, camunda.DefaultRetryConfig, log, "Elasticsearch connection", es.Ping); err != nil {
			return err
		}
		deps.Elasticsearch = es
		readiness = append(readiness, es)
		log.Info("Elasticsearch connected", nil)
	}

	source, err := catalog.NewSource(cfg.Catalog, deps, log)
	if err != nil {
		return fmt.Errorf("template catalog: %w", err)
	}

	// --- Workers ---
	store := answers.NewStore(pg.DB, rdb.Client, config.Seconds(cfg.Answers.CacheTTL), log)
	engine := scoring.NewEngine(scoring.DefaultRegistry())
	workers := camunda.NewWorkers(log)

	scoreCfg := config.GetWorkerConfig(cfg, eps.TaskType)
	scoreHandler := eps.NewHandler(eps.LoadConfig(scoreCfg), engine, store, obs, log)
	workers.Start(zeebe, eps.TaskType, scoreCfg, scoreHandler.Handle)

	matchCfg := config.GetWorkerConfig(cfg, mt.TaskType)
	matchHandler := mt.NewHandler(mt.LoadConfig(matchCfg), source, obs, log)
	workers.Start(zeebe, mt.TaskType, matchCfg, matchHandler.Handle)

	log.Info("workers registered", map[string]interface{}{"count": workers.Count()})

	// --- Health & Metrics Server ---
	server := newHealthServer(cfg, readiness)
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("quest worker stopped", nil)
	return nil
}

func newHealthServer(cfg *config.Config, deps []database.Pinger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := database.PingAll(ctx, deps...); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
