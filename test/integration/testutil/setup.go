//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
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
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TestDBHost = "localhost"
	TestDBPort = 5434
	TestDBUser = "crickbet"
	TestDBPass = "crickbet"
	TestDBName = "crickbet_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server  *httptest.Server
	Pool    *pgxpool.Pool
	Applier *settlement.Applier
	t       *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "crickbet")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
			return
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if err := infra.RunMigrations(testDSN(), logger); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			sharedPool.Close()
			sharedPool = nil
			return
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router and test DB. Sweeps and Kafka are not started; tests drive
// settlement through the admin endpoints or the Applier directly.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	matchRepo := repository.NewMatchRepository()
	wagerRepo := repository.NewWagerRepository()
	fancyRepo := repository.NewFancyRepository()
	accountRepo := repository.NewAccountRepository()
	txRepo := repository.NewTransactionRepository()
	agentRepo := repository.NewAgentRepository()
	outboxRepo := repository.NewOutboxRepository()

	ledgerEngine := ledger.NewEngine(accountRepo, txRepo, outboxRepo)
	auditor := ledger.NewAuditor(pool, accountRepo, txRepo)

	cascade := settlement.NewCascade(agentRepo, outboxRepo, logger)
	applier := settlement.NewApplier(pool, matchRepo, wagerRepo, fancyRepo, accountRepo, outboxRepo, ledgerEngine, cascade, logger)
	adminSvc := settlement.NewAdminService(pool, matchRepo, fancyRepo, wagerRepo, applier, logger)
	wagerSvc := service.NewWagerService(pool, matchRepo, fancyRepo, wagerRepo, ledgerEngine, logger)

	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.JSONContentType)
	r.Get("/health", handler.HealthHandler(pool))
	adminHandler := handler.NewAdminHandler(adminSvc, wagerSvc, auditor)
	r.Group(adminHandler.Routes)

	server := httptest.NewServer(r)

	env := &TestEnv{
		Server:  server,
		Pool:    pool,
		Applier: applier,
		t:       t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}

// NewSweeper builds a sweeper over the test DB with the given result sources.
// Grace windows are short enough that seeded matches (ended an hour ago) are
// already past them, so a single sweep tick acts immediately.
func (env *TestEnv) NewSweeper(sources ...resolver.Source) *sweeper.Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &infra.Config{
		ResultSweepInterval: time.Minute,
		FancySweepInterval:  time.Minute,
		MarketSweepInterval: time.Minute,
		FancyVoidAfter:      5 * time.Minute,
		MarketVoidAfter:     10 * time.Minute,
		AncientAfter:        24 * time.Hour,
	}
	res := resolver.NewResolver(logger, sources...)
	return sweeper.NewSweeper(cfg, env.Pool,
		repository.NewMatchRepository(), repository.NewFancyRepository(), repository.NewOutboxRepository(),
		res, env.Applier, sweeper.NewSweepLock(nil), logger)
}
