package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/ledger"
	"github.com/crickbet/platform/internal/repository"
	"github.com/crickbet/platform/internal/settlement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WagerService places wagers. Placement is the only balance mutation the
// settlement engine does not originate itself; it shares the same ledger
// engine so stakes are debited under the same account lock and idempotency
// rules as settlement credits.
type WagerService struct {
	pool    *pgxpool.Pool
	matches repository.MatchRepository
	fancies repository.FancyRepository
	wagers  repository.WagerRepository
	engine  *ledger.Engine
	logger  *slog.Logger
}

// NewWagerService creates the wager placement service.
func NewWagerService(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	fancies repository.FancyRepository,
	wagers repository.WagerRepository,
	engine *ledger.Engine,
	logger *slog.Logger,
) *WagerService {
	return &WagerService{
		pool:    pool,
		matches: matches,
		fancies: fancies,
		wagers:  wagers,
		engine:  engine,
		logger:  logger,
	}
}

// PlaceWagerRequest carries a placement. Stake is minor units, odds are
// integer-scaled (175 == 1.75).
type PlaceWagerRequest struct {
	AccountID     uuid.UUID  `json:"account_id"`
	MatchID       uuid.UUID  `json:"match_id"`
	FancyMarketID *uuid.UUID `json:"fancy_market_id,omitempty"`
	Selection     string     `json:"selection"`
	Stake         int64      `json:"stake"`
	Odds          int        `json:"odds"`
}

// PlaceWager validates the request, debits the stake and creates the wager
// in one transaction.
func (s *WagerService) PlaceWager(ctx context.Context, req PlaceWagerRequest) (*domain.Wager, error) {
	if err := domain.ValidatePositiveAmount(req.Stake); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateOdds(req.Odds); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	match, err := s.matches.FindByID(ctx, s.pool, req.MatchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", req.MatchID.String())
	}
	if match.IsSettled || match.Status == domain.MatchCompleted || match.Status == domain.MatchCancelled {
		return nil, domain.ErrConflict("match is no longer open for wagers")
	}

	if req.FancyMarketID != nil {
		if err := s.checkFancyOpen(ctx, *req.FancyMarketID, req.Selection); err != nil {
			return nil, err
		}
	} else if err := checkPrimarySelection(match, req.Selection); err != nil {
		return nil, err
	}

	wager := &domain.Wager{
		ID:              uuid.New(),
		AccountID:       req.AccountID,
		MatchID:         req.MatchID,
		FancyMarketID:   req.FancyMarketID,
		Selection:       strings.TrimSpace(req.Selection),
		Stake:           req.Stake,
		Odds:            req.Odds,
		PotentialPayout: domain.PotentialPayoutFor(req.Stake, req.Odds),
		Status:          domain.WagerPending,
		PlacedAt:        time.Now(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin placement tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecutePlaceWager(ctx, tx, domain.PlaceWagerParams{
		AccountID:   req.AccountID,
		Amount:      req.Stake,
		WagerID:     wager.ID,
		MatchID:     req.MatchID,
		ExternalRef: "place:" + wager.ID.String(),
		Source:      "wager_placement",
		ProcessedBy: "api",
	})
	if err != nil {
		return nil, err
	}
	wager.PlacementTxID = &result.Transaction.ID

	if err := s.wagers.Insert(ctx, tx, wager); err != nil {
		return nil, fmt.Errorf("insert wager: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit placement: %w", err)
	}

	s.logger.Info("wager placed",
		"wager_id", wager.ID, "account_id", req.AccountID, "match_id", req.MatchID,
		"stake", req.Stake, "odds", req.Odds, "selection", wager.Selection)
	return wager, nil
}

func (s *WagerService) checkFancyOpen(ctx context.Context, marketID uuid.UUID, selection string) error {
	market, err := s.fancies.FindByID(ctx, s.pool, marketID)
	if err != nil {
		return err
	}
	if market == nil {
		return domain.ErrNotFound("fancy market", marketID.String())
	}
	if market.Settled || market.Suspended || !market.Active {
		return domain.ErrConflict("fancy market is not open for wagers")
	}
	_, _, err = settlement.ParseFancyClaim(selection)
	return err
}

func checkPrimarySelection(match *domain.Match, selection string) error {
	sel := strings.TrimSpace(selection)
	if strings.EqualFold(sel, match.Team1) ||
		strings.EqualFold(sel, match.Team2) ||
		strings.EqualFold(sel, domain.WinnerDraw) {
		return nil
	}
	return domain.ErrValidation(fmt.Sprintf(
		"selection %q is not a participant of this match", selection))
}
