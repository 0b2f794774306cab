package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/crickbet/platform/internal/domain"
)

const sweepActor = "result-sweep"

// resultSweep is the main reconciliation tick. It runs two phases:
//
//	phase 1 — resolve: for every completed match with no canonical winner,
//	ask the resolver; record winners (the DRAW sentinel included) or void
//	outright on no-result/tie.
//	phase 2 — settle: for every completed match with a winner and
//	is_settled=false, run the applier over its pending wagers and mark the
//	match settled once none remain.
//
// Splitting the phases lets winner-population and wager-settlement retry
// independently: a crash between them loses nothing.
func (s *Sweeper) resultSweep(ctx context.Context) error {
	if err := s.resolvePhase(ctx); err != nil {
		return err
	}
	return s.settlePhase(ctx)
}

func (s *Sweeper) resolvePhase(ctx context.Context) error {
	unresolved, err := s.matches.ListUnresolved(ctx, s.pool)
	if err != nil {
		return fmt.Errorf("list unresolved matches: %w", err)
	}

	for i := range unresolved {
		match := &unresolved[i]
		if err := s.resolveMatch(ctx, match); err != nil {
			s.logger.Error("match resolution failed",
				"match_id", match.ID, "team1", match.Team1, "team2", match.Team2, "error", err)
		}
	}
	return nil
}

func (s *Sweeper) resolveMatch(ctx context.Context, match *domain.Match) error {
	outcome, err := s.resolver.Resolve(ctx, match.Team1, match.Team2)
	if err != nil {
		return err
	}
	if outcome == nil {
		if age := time.Since(match.EndsAt); age > s.cfg.AncientAfter {
			s.logger.Warn("match unresolved far past its end time",
				"match_id", match.ID, "age", age.Round(time.Minute),
				"team1", match.Team1, "team2", match.Team2)
		}
		return nil
	}

	s.logger.Info("match outcome resolved",
		"match_id", match.ID, "outcome", outcome.String(), "source", outcome.Source)

	if outcome.RefundsAll() {
		_, err := s.applier.VoidMatch(ctx, match, outcome.String(), sweepActor)
		return err
	}

	winner := outcome.CanonicalWinner()
	var winType *domain.WinType
	var margin *int
	if outcome.Margin != nil {
		winType = &outcome.Margin.Type
		margin = &outcome.Margin.Value
	}

	recorded, err := s.matches.RecordWinner(ctx, s.pool, match.ID, winner, winType, margin)
	if err != nil {
		return fmt.Errorf("record winner: %w", err)
	}
	if recorded {
		if err := s.outbox.Insert(ctx, s.pool, domain.NewMatchStatusEvent(match.ID, match.Status, winner)); err != nil {
			s.logger.Error("match status event insert failed", "match_id", match.ID, "error", err)
		}
	}
	// Wager settlement happens in phase 2, picked up by ListResolvedUnsettled.
	return nil
}

func (s *Sweeper) settlePhase(ctx context.Context) error {
	resolved, err := s.matches.ListResolvedUnsettled(ctx, s.pool)
	if err != nil {
		return fmt.Errorf("list resolved unsettled matches: %w", err)
	}

	for i := range resolved {
		match := &resolved[i]
		report, err := s.applier.SettleMatch(ctx, match, sweepActor)
		if err != nil {
			s.logger.Error("match settlement failed", "match_id", match.ID, "error", err)
			continue
		}
		if report.Resolved > 0 || len(report.Failures) > 0 {
			s.logger.Info("match settlement pass",
				"match_id", match.ID, "resolved", report.Resolved,
				"skipped", report.Skipped, "failures", len(report.Failures))
		}
	}
	return nil
}
