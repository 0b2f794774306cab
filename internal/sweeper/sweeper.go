package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/crickbet/platform/internal/infra"
	"github.com/crickbet/platform/internal/repository"
	"github.com/crickbet/platform/internal/resolver"
	"github.com/crickbet/platform/internal/settlement"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/semaphore"
)

// Sweep type names, used for guards, locks and metric labels.
const (
	sweepResult = "result"
	sweepFancy  = "stale_fancy"
	sweepMarket = "stale_market"
)

// Sweeper runs the three independent periodic reconciliation sweeps. Each
// sweep type has its own cadence, its own single-flight guard (a slow tick
// is skipped by the next, never queued) and, when Redis is configured, a
// distributed lock so only one engine instance runs it.
type Sweeper struct {
	cfg      *infra.Config
	pool     *pgxpool.Pool
	matches  repository.MatchRepository
	fancies  repository.FancyRepository
	outbox   repository.OutboxRepository
	resolver *resolver.Resolver
	applier  *settlement.Applier
	lock     *SweepLock
	logger   *slog.Logger
	guards   map[string]*semaphore.Weighted
}

// NewSweeper creates the settlement orchestrator.
func NewSweeper(
	cfg *infra.Config,
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	fancies repository.FancyRepository,
	outbox repository.OutboxRepository,
	res *resolver.Resolver,
	applier *settlement.Applier,
	lock *SweepLock,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		pool:     pool,
		matches:  matches,
		fancies:  fancies,
		outbox:   outbox,
		resolver: res,
		applier:  applier,
		lock:     lock,
		logger:   logger,
		guards: map[string]*semaphore.Weighted{
			sweepResult: semaphore.NewWeighted(1),
			sweepFancy:  semaphore.NewWeighted(1),
			sweepMarket: semaphore.NewWeighted(1),
		},
	}
}

// Start launches the three sweep loops. They stop when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper starting",
		"result_interval", s.cfg.ResultSweepInterval,
		"fancy_interval", s.cfg.FancySweepInterval,
		"market_interval", s.cfg.MarketSweepInterval)

	go s.loop(ctx, sweepResult, s.cfg.ResultSweepInterval, s.resultSweep)
	go s.loop(ctx, sweepFancy, s.cfg.FancySweepInterval, s.staleFancySweep)
	go s.loop(ctx, sweepMarket, s.cfg.MarketSweepInterval, s.staleMarketSweep)
}

func (s *Sweeper) loop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep loop stopped", "sweep", name)
			return
		case <-ticker.C:
			s.runOnce(ctx, name, interval, fn)
		}
	}
}

// runOnce executes a single guarded tick. Sweep failures are logged and
// absorbed; the next tick simply retries.
func (s *Sweeper) runOnce(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	guard := s.guards[name]
	if !guard.TryAcquire(1) {
		infra.SweepSkips.WithLabelValues(name).Inc()
		s.logger.Warn("sweep still running, skipping tick", "sweep", name)
		return
	}
	defer guard.Release(1)

	unlock, acquired, err := s.lock.Acquire(ctx, name, interval)
	if err != nil {
		s.logger.Error("sweep lock error", "sweep", name, "error", err)
		return
	}
	if !acquired {
		infra.SweepSkips.WithLabelValues(name).Inc()
		return
	}
	defer unlock()

	infra.SweepRuns.WithLabelValues(name).Inc()
	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("sweep failed", "sweep", name, "error", err)
	}
	infra.SweepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// RunResultSweepNow executes one result sweep tick outside the schedule.
// Used at startup so a restarted engine catches up immediately.
func (s *Sweeper) RunResultSweepNow(ctx context.Context) {
	s.runOnce(ctx, sweepResult, s.cfg.ResultSweepInterval, s.resultSweep)
}

// RunStaleFancySweepNow executes one stale-fancy tick outside the schedule.
func (s *Sweeper) RunStaleFancySweepNow(ctx context.Context) {
	s.runOnce(ctx, sweepFancy, s.cfg.FancySweepInterval, s.staleFancySweep)
}

// RunStaleMarketSweepNow executes one stale-market tick outside the schedule.
func (s *Sweeper) RunStaleMarketSweepNow(ctx context.Context) {
	s.runOnce(ctx, sweepMarket, s.cfg.MarketSweepInterval, s.staleMarketSweep)
}
