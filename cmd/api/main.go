package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crickbet/platform/internal/handler"
	"github.com/crickbet/platform/internal/infra"
	"github.com/crickbet/platform/internal/ledger"
	"github.com/crickbet/platform/internal/repository"
	"github.com/crickbet/platform/internal/resolver"
	"github.com/crickbet/platform/internal/service"
	"github.com/crickbet/platform/internal/settlement"
	"github.com/crickbet/platform/internal/sweeper"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Apply migrations
	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis (optional, distributed sweep locks)
	rdb, err := infra.NewRedisClient(ctx, cfg.RedisAddr, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	matchRepo := repository.NewMatchRepository()
	wagerRepo := repository.NewWagerRepository()
	fancyRepo := repository.NewFancyRepository()
	accountRepo := repository.NewAccountRepository()
	txRepo := repository.NewTransactionRepository()
	agentRepo := repository.NewAgentRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	ledgerEngine := ledger.NewEngine(accountRepo, txRepo, outboxRepo)
	auditor := ledger.NewAuditor(pool, accountRepo, txRepo)

	// Result sources, priority ordered
	res := resolver.NewResolver(logger,
		resolver.NewCricScoreSource(cfg.CricScoreBaseURL, cfg.CricScoreAPIKey),
		resolver.NewSportsFeedSource(cfg.SportsFeedBaseURL, cfg.SportsFeedAPIKey),
		resolver.NewOddsFeedSource(cfg.OddsFeedBaseURL),
	)

	// Settlement
	cascade := settlement.NewCascade(agentRepo, outboxRepo, logger)
	applier := settlement.NewApplier(pool, matchRepo, wagerRepo, fancyRepo, accountRepo, outboxRepo, ledgerEngine, cascade, logger)
	adminSvc := settlement.NewAdminService(pool, matchRepo, fancyRepo, wagerRepo, applier, logger)
	wagerSvc := service.NewWagerService(pool, matchRepo, fancyRepo, wagerRepo, ledgerEngine, logger)

	// Sweeps
	lock := sweeper.NewSweepLock(rdb)
	sw := sweeper.NewSweeper(cfg, pool, matchRepo, fancyRepo, outboxRepo, res, applier, lock, logger)
	sw.Start(ctx)
	go sw.RunResultSweepNow(ctx)

	// Outbox poller → Kafka
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	infra.NewOutboxPoller(pool, producer, logger).Start(ctx)

	// Router
	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(pool))
	r.Method("GET", "/metrics", infra.MetricsHandler())

	adminHandler := handler.NewAdminHandler(adminSvc, wagerSvc, auditor)
	r.Group(adminHandler.Routes)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
