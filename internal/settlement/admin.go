package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService exposes the human-triggered settlement overrides. They reuse
// the same applier path as the sweeps but bypass the resolver, and unlike
// sweeps they report AlreadySettled instead of silently no-opping.
type AdminService struct {
	pool    *pgxpool.Pool
	matches repository.MatchRepository
	fancies repository.FancyRepository
	wagers  repository.WagerRepository
	applier *Applier
	logger  *slog.Logger
}

// NewAdminService creates the admin settlement service.
func NewAdminService(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	fancies repository.FancyRepository,
	wagers repository.WagerRepository,
	applier *Applier,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		pool:    pool,
		matches: matches,
		fancies: fancies,
		wagers:  wagers,
		applier: applier,
		logger:  logger,
	}
}

// ManualSettle records the given winner on a match and settles its wagers.
// The winner must be one of the two participants or the DRAW sentinel.
func (s *AdminService) ManualSettle(ctx context.Context, matchID uuid.UUID, winner string, actor string) (ApplyReport, error) {
	match, err := s.matches.FindByID(ctx, s.pool, matchID)
	if err != nil {
		return ApplyReport{}, err
	}
	if match == nil {
		return ApplyReport{}, domain.ErrNotFound("match", matchID.String())
	}
	if match.IsSettled {
		return ApplyReport{}, domain.ErrAlreadySettled("match", matchID.String())
	}

	canonical, err := canonicalizeWinner(match, winner)
	if err != nil {
		return ApplyReport{}, err
	}

	recorded, err := s.matches.RecordWinner(ctx, s.pool, match.ID, canonical, nil, nil)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("record winner: %w", err)
	}
	if !recorded && match.HasWinner() && *match.Winner != canonical {
		return ApplyReport{}, domain.ErrConflict(fmt.Sprintf(
			"match already has winner %q recorded", *match.Winner))
	}
	match.Winner = &canonical

	s.logger.Info("manual settle", "match_id", matchID, "winner", canonical, "actor", actor)
	return s.applier.SettleMatch(ctx, match, actor)
}

// ManualVoid refunds every pending wager on the match and marks it settled.
func (s *AdminService) ManualVoid(ctx context.Context, matchID uuid.UUID, reason, actor string) (ApplyReport, error) {
	match, err := s.matches.FindByID(ctx, s.pool, matchID)
	if err != nil {
		return ApplyReport{}, err
	}
	if match == nil {
		return ApplyReport{}, domain.ErrNotFound("match", matchID.String())
	}
	if match.IsSettled {
		return ApplyReport{}, domain.ErrAlreadySettled("match", matchID.String())
	}
	if reason == "" {
		return ApplyReport{}, domain.ErrValidation("void reason is required")
	}

	s.logger.Info("manual void", "match_id", matchID, "reason", reason, "actor", actor)
	return s.applier.VoidMatch(ctx, match, reason, actor)
}

// ManualFancySettle declares a fancy market's result and settles its wagers.
func (s *AdminService) ManualFancySettle(ctx context.Context, marketID uuid.UUID, result int, actor string) (ApplyReport, error) {
	market, err := s.fancies.FindByID(ctx, s.pool, marketID)
	if err != nil {
		return ApplyReport{}, err
	}
	if market == nil {
		return ApplyReport{}, domain.ErrNotFound("fancy market", marketID.String())
	}
	if market.Settled {
		if market.ResultValue == nil {
			return ApplyReport{}, domain.ErrAlreadySettled("fancy market", marketID.String())
		}
		if *market.ResultValue != result {
			return ApplyReport{}, domain.ErrConflict(fmt.Sprintf(
				"fancy market already declared result %d", *market.ResultValue))
		}
		// Same result again: re-enter the wager pass so anything a failed
		// earlier run left pending still settles.
		s.logger.Info("manual fancy resettle", "market_id", marketID, "result", result, "actor", actor)
		return s.applier.ResettleFancy(ctx, market, actor)
	}

	s.logger.Info("manual fancy settle", "market_id", marketID, "result", result, "actor", actor)
	return s.applier.SettleFancy(ctx, market, result, actor)
}

// UnsettledSummary is the operator's view of everything still in flight.
type UnsettledSummary struct {
	UnresolvedMatches []domain.Match `json:"unresolved_matches"`
	ResolvedUnsettled []domain.Match `json:"resolved_unsettled_matches"`
	PendingWagers     map[string]int `json:"pending_wagers_by_match"`
}

// GetUnsettledSummary reports completed matches that still need resolution
// or settlement, with pending wager counts per match.
func (s *AdminService) GetUnsettledSummary(ctx context.Context) (*UnsettledSummary, error) {
	unresolved, err := s.matches.ListUnresolved(ctx, s.pool)
	if err != nil {
		return nil, fmt.Errorf("list unresolved matches: %w", err)
	}
	resolved, err := s.matches.ListResolvedUnsettled(ctx, s.pool)
	if err != nil {
		return nil, fmt.Errorf("list resolved unsettled matches: %w", err)
	}

	summary := &UnsettledSummary{
		UnresolvedMatches: unresolved,
		ResolvedUnsettled: resolved,
		PendingWagers:     make(map[string]int, len(unresolved)+len(resolved)),
	}
	for _, m := range append(append([]domain.Match{}, unresolved...), resolved...) {
		n, err := s.wagers.CountPendingByMatch(ctx, s.pool, m.ID)
		if err != nil {
			return nil, fmt.Errorf("count pending wagers: %w", err)
		}
		summary.PendingWagers[m.ID.String()] = n
	}
	return summary, nil
}

func canonicalizeWinner(match *domain.Match, winner string) (string, error) {
	w := strings.TrimSpace(winner)
	switch {
	case strings.EqualFold(w, domain.WinnerDraw):
		return domain.WinnerDraw, nil
	case strings.EqualFold(w, match.Team1):
		return match.Team1, nil
	case strings.EqualFold(w, match.Team2):
		return match.Team2, nil
	default:
		return "", domain.ErrValidation(fmt.Sprintf(
			"winner %q is neither %q, %q nor %q", winner, match.Team1, match.Team2, domain.WinnerDraw))
	}
}
