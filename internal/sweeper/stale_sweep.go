package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/crickbet/platform/internal/domain"
)

// staleFancySweep finishes declared markets whose wager pass failed part way,
// then voids markets on completed matches that never got a declared result
// within the grace window. Medium cadence.
func (s *Sweeper) staleFancySweep(ctx context.Context) error {
	stranded, err := s.fancies.ListDeclaredWithPending(ctx, s.pool)
	if err != nil {
		return fmt.Errorf("list declared fancy markets with pending wagers: %w", err)
	}
	for i := range stranded {
		market := &stranded[i]
		report, err := s.applier.ResettleFancy(ctx, market, "fancy-sweep")
		if err != nil {
			s.logger.Error("fancy resettle failed", "market_id", market.ID, "error", err)
			continue
		}
		s.logger.Info("stranded fancy wagers resettled",
			"market_id", market.ID, "resolved", report.Resolved, "failures", len(report.Failures))
	}

	cutoff := time.Now().Add(-s.cfg.FancyVoidAfter)
	stale, err := s.fancies.ListStaleUnsettled(ctx, s.pool, cutoff)
	if err != nil {
		return fmt.Errorf("list stale fancy markets: %w", err)
	}

	for i := range stale {
		market := &stale[i]
		report, err := s.applier.VoidFancy(ctx, market,
			fmt.Sprintf("no result declared within %s of match end", s.cfg.FancyVoidAfter), "fancy-sweep")
		if err != nil {
			// An admin declared the market between the list and the void.
			if domain.IsAlreadySettled(err) {
				continue
			}
			s.logger.Error("stale fancy void failed", "market_id", market.ID, "error", err)
			continue
		}
		s.logger.Info("stale fancy market voided",
			"market_id", market.ID, "match_id", market.MatchID, "refunded", report.Resolved)
	}
	return nil
}

// staleMarketSweep is the ultimate backstop: completed matches whose end
// time is past the long grace window with still no canonical winner get all
// remaining pending wagers voided. Guarantees no wager stays pending forever.
func (s *Sweeper) staleMarketSweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.MarketVoidAfter)
	stale, err := s.matches.ListStaleUnresolved(ctx, s.pool, cutoff)
	if err != nil {
		return fmt.Errorf("list stale matches: %w", err)
	}

	for i := range stale {
		match := &stale[i]
		report, err := s.applier.VoidMatch(ctx, match,
			fmt.Sprintf("no resolvable result within %s of match end", s.cfg.MarketVoidAfter), "market-sweep")
		if err != nil {
			s.logger.Error("stale match void failed", "match_id", match.ID, "error", err)
			continue
		}
		s.logger.Info("stale match voided",
			"match_id", match.ID, "team1", match.Team1, "team2", match.Team2,
			"refunded", report.Resolved, "failures", len(report.Failures))
	}
	return nil
}
