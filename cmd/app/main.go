// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/config"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
	pg "github.com/pappitti/semi-agentic-knowledge-base/internal/infra/db/postgres"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/jobs"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/llm"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/logging"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/media"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/metrics"
	red "github.com/pappitti/semi-agentic-knowledge-base/internal/infra/redis"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/web"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/scrape"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	progressRepo := red.NewProgressRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories and stores ----
	docRepo := pg.NewDocumentRepo(pool)
	logRepo := pg.NewAttemptLogRepo(pool)
	assetStore := media.NewStore(cfg.Media.Root)

	// ---- Scraping ----
	pdfExtractor := scrape.NewPDFExtractor(cfg.PDF, scrape.NewExecRunner())
	fetcher := scrape.NewFetcher(cfg.Fetch, pdfExtractor, logger)

	// ---- Completion backends ----
	hosted := llm.NewOpenAIAdapter(cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.DefaultModel, cfg.LLM.Timeout)
	local := llm.NewLlamaCppAdapter(cfg.LLM.LlamaCppURL, cfg.LLM.Timeout)
	completions := func(backend string) adapter.CompletionAdapter {
		return llm.NewRouter(backend, hosted, local)
	}

	// ---- Metrics ----
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	// ---- Jobs and use cases ----
	runner := jobs.NewRunner(ctx, logger)
	launch := func(jobID string, task func(ctx context.Context)) error {
		return runner.Launch(jobID, task)
	}
	ingestUC := usecase.NewIngestUseCase(
		docRepo, logRepo, progressRepo, assetStore,
		fetcher, completions, launch, logger,
	)
	submitUC := usecase.NewSubmitUseCase(docRepo, logRepo, logger)

	// ---- HTTP server ----
	srv := web.NewServer(ingestUC, submitUC, cfg.Admin.APIKey, registry, logger)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	// let in-flight ingestion jobs run to completion
	runner.Wait()
	cancel()
}
