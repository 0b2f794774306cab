package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
	"github.com/crickbet/platform/internal/ledger"
	"github.com/crickbet/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Applier converts canonical outcomes into irreversible financial state.
// Each wager settles in its own transaction: row lock, status re-check,
// balance mutation, ledger entry and outbox event commit or roll back
// together. A failure on one wager never aborts the rest of the batch.
type Applier struct {
	pool     *pgxpool.Pool
	matches  repository.MatchRepository
	wagers   repository.WagerRepository
	fancies  repository.FancyRepository
	accounts repository.AccountRepository
	outbox   repository.OutboxRepository
	engine   *ledger.Engine
	cascade  *Cascade
	logger   *slog.Logger
}

// NewApplier creates the outcome and ledger applier.
func NewApplier(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	wagers repository.WagerRepository,
	fancies repository.FancyRepository,
	accounts repository.AccountRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	cascade *Cascade,
	logger *slog.Logger,
) *Applier {
	return &Applier{
		pool:     pool,
		matches:  matches,
		wagers:   wagers,
		fancies:  fancies,
		accounts: accounts,
		outbox:   outbox,
		engine:   engine,
		cascade:  cascade,
		logger:   logger,
	}
}

// WagerFailure records one wager that could not be settled this pass.
type WagerFailure struct {
	WagerID uuid.UUID `json:"wager_id"`
	Err     error     `json:"-"`
	Message string    `json:"error"`
}

// ApplyReport summarizes one settlement pass over a batch of wagers.
type ApplyReport struct {
	Resolved int            `json:"resolved"`
	Skipped  int            `json:"skipped"`
	Failures []WagerFailure `json:"failures,omitempty"`
}

// SettleMatch settles every pending primary-market wager on a match against
// its recorded canonical winner, then marks the match settled once no wager
// remains pending. Safe to call repeatedly: settled wagers no-op.
func (a *Applier) SettleMatch(ctx context.Context, match *domain.Match, actor string) (ApplyReport, error) {
	if !match.HasWinner() {
		return ApplyReport{}, domain.ErrConflict("match has no canonical winner recorded")
	}
	winner := *match.Winner

	pending, err := a.wagers.ListPendingByMatch(ctx, a.pool, match.ID)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("list pending wagers: %w", err)
	}

	report := a.applyBatch(ctx, pending, actor, "winner "+winner, func(w *domain.Wager) (Decision, error) {
		return DecideWager(w, winner), nil
	})

	if err := a.finishMatch(ctx, match, winner); err != nil {
		return report, err
	}
	return report, nil
}

// VoidMatch refunds every pending wager on the match (primary and fancy)
// and marks the match settled. Used for no-result, tie, stale-market
// backstops and manual voids.
func (a *Applier) VoidMatch(ctx context.Context, match *domain.Match, reason, actor string) (ApplyReport, error) {
	pending, err := a.wagers.ListAllPendingByMatch(ctx, a.pool, match.ID)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("list pending wagers: %w", err)
	}

	report := a.applyBatch(ctx, pending, actor, reason, func(w *domain.Wager) (Decision, error) {
		return DecideVoid(w), nil
	})

	winner := ""
	if match.HasWinner() {
		winner = *match.Winner
	}
	if err := a.finishMatch(ctx, match, winner); err != nil {
		return report, err
	}
	return report, nil
}

// SettleFancy declares the market's result and settles its pending wagers
// by threshold comparison. Declaring flips suspended and settled together
// so no wager can be placed after declaration. Only the caller that wins
// the declaration race publishes the event and runs the wager pass; every
// other caller gets AlreadySettled.
func (a *Applier) SettleFancy(ctx context.Context, market *domain.FancyMarket, result int, actor string) (ApplyReport, error) {
	declared, err := a.fancies.Declare(ctx, a.pool, market.ID, &result)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("declare fancy result: %w", err)
	}
	if !declared {
		return ApplyReport{}, domain.ErrAlreadySettled("fancy market", market.ID.String())
	}

	if err := a.outbox.Insert(ctx, a.pool, domain.NewFancyDeclaredEvent(market.ID, market.MatchID, result)); err != nil {
		a.logger.Error("fancy declared event insert failed", "market_id", market.ID, "error", err)
	}

	return a.settleFancyPending(ctx, market, &result, fmt.Sprintf("fancy result %d", result), actor)
}

// ResettleFancy re-runs the wager pass for a market whose result is already
// declared, picking up wagers an earlier pass failed to settle. Safe to
// repeat: settled wagers no-op under the row lock.
func (a *Applier) ResettleFancy(ctx context.Context, market *domain.FancyMarket, actor string) (ApplyReport, error) {
	if !market.Settled {
		return ApplyReport{}, domain.ErrConflict("fancy market has no declared result")
	}
	reason := "fancy market voided"
	if market.ResultValue != nil {
		reason = fmt.Sprintf("fancy result %d", *market.ResultValue)
	}
	return a.settleFancyPending(ctx, market, market.ResultValue, reason, actor)
}

// VoidFancy voids a market that never received a declared result, refunding
// every pending wager on it.
func (a *Applier) VoidFancy(ctx context.Context, market *domain.FancyMarket, reason, actor string) (ApplyReport, error) {
	declared, err := a.fancies.Declare(ctx, a.pool, market.ID, nil)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("void fancy market: %w", err)
	}
	if !declared {
		return ApplyReport{}, domain.ErrAlreadySettled("fancy market", market.ID.String())
	}
	return a.settleFancyPending(ctx, market, nil, reason, actor)
}

// settleFancyPending settles whatever is still pending on a declared market.
// A nil result voids; a value settles by threshold comparison.
func (a *Applier) settleFancyPending(ctx context.Context, market *domain.FancyMarket, result *int, reason, actor string) (ApplyReport, error) {
	pending, err := a.wagers.ListPendingByFancy(ctx, a.pool, market.ID)
	if err != nil {
		return ApplyReport{}, fmt.Errorf("list pending fancy wagers: %w", err)
	}

	decide := func(w *domain.Wager) (Decision, error) { return DecideVoid(w), nil }
	if result != nil {
		decide = func(w *domain.Wager) (Decision, error) { return DecideFancy(w, *result) }
	}
	return a.applyBatch(ctx, pending, actor, reason, decide), nil
}

// applyBatch settles each wager independently, collecting failures instead
// of aborting on the first one.
func (a *Applier) applyBatch(ctx context.Context, wagers []domain.Wager, actor, reason string, decide func(*domain.Wager) (Decision, error)) ApplyReport {
	var report ApplyReport
	for i := range wagers {
		settled, err := a.settleOne(ctx, wagers[i].ID, actor, reason, decide)
		if err != nil {
			a.logger.Error("wager settlement failed",
				"wager_id", wagers[i].ID, "reason", reason, "error", err)
			report.Failures = append(report.Failures, WagerFailure{
				WagerID: wagers[i].ID, Err: err, Message: err.Error(),
			})
			continue
		}
		if settled {
			report.Resolved++
		} else {
			report.Skipped++
		}
	}
	return report
}

// settleOne is the per-wager atomic unit. Returns (false, nil) when a
// concurrent sweep already transitioned the wager: that is the expected
// no-op, not an error.
func (a *Applier) settleOne(ctx context.Context, wagerID uuid.UUID, actor, reason string, decide func(*domain.Wager) (Decision, error)) (bool, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin settle tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock plus status re-check. Whatever the caller read earlier is
	// stale by now; only the locked row decides.
	wager, err := a.wagers.LockForSettle(ctx, tx, wagerID)
	if err != nil {
		return false, fmt.Errorf("lock wager: %w", err)
	}
	if wager == nil {
		return false, domain.ErrNotFound("wager", wagerID.String())
	}
	if wager.Status != domain.WagerPending {
		return false, nil
	}

	decision, err := decide(wager)
	if err != nil {
		return false, err
	}
	if err := domain.ValidateSettleTransition(wager.Status, decision.Status); err != nil {
		return false, domain.ErrInternal(err.Error(), nil)
	}

	switch decision.Status {
	case domain.WagerWon:
		_, err := a.engine.ExecuteCreditWin(ctx, tx, domain.CreditWinParams{
			AccountID:   wager.AccountID,
			Amount:      decision.Credit,
			WagerID:     wager.ID,
			MatchID:     wager.MatchID,
			ExternalRef: "settle:win:" + wager.ID.String(),
			Source:      "settlement",
			ProcessedBy: actor,
		})
		if err != nil {
			return false, err
		}
		if err := a.wagers.MarkSettled(ctx, tx, wager.ID, domain.WagerWon, decision.Credit); err != nil {
			return false, err
		}
		if err := a.payCommission(ctx, tx, wager, decision.Credit); err != nil {
			return false, err
		}

	case domain.WagerLost:
		if err := a.wagers.MarkSettled(ctx, tx, wager.ID, domain.WagerLost, 0); err != nil {
			return false, err
		}

	case domain.WagerVoid:
		_, err := a.engine.ExecuteRefundStake(ctx, tx, domain.RefundStakeParams{
			AccountID:   wager.AccountID,
			Amount:      decision.Credit,
			WagerID:     wager.ID,
			MatchID:     wager.MatchID,
			ExternalRef: "settle:refund:" + wager.ID.String(),
			Source:      "settlement",
			ProcessedBy: actor,
			Reason:      reason,
		})
		if err != nil {
			return false, err
		}
		if err := a.wagers.MarkSettled(ctx, tx, wager.ID, domain.WagerVoid, 0); err != nil {
			return false, err
		}

	default:
		return false, domain.ErrInternal(fmt.Sprintf("unexpected decision status %s", decision.Status), nil)
	}

	payout := int64(0)
	if decision.Status == domain.WagerWon {
		payout = decision.Credit
	}
	if err := a.outbox.Insert(ctx, tx, domain.NewWagerSettledEvent(wager.ID, wager.MatchID, decision.Status, payout)); err != nil {
		return false, fmt.Errorf("insert wager settled event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit settle tx: %w", err)
	}

	infra.WagersSettled.WithLabelValues(string(decision.Status)).Inc()
	return true, nil
}

// payCommission fans out up the owner's agent chain within the win's
// transaction. Accounts without a referring agent pay nothing.
func (a *Applier) payCommission(ctx context.Context, tx repository.DBTX, wager *domain.Wager, winAmount int64) error {
	account, err := a.accounts.FindByID(ctx, tx, wager.AccountID)
	if err != nil {
		return fmt.Errorf("load account for commission: %w", err)
	}
	if account == nil || account.AgentID == nil {
		return nil
	}
	_, err = a.cascade.Distribute(ctx, tx, wager, *account.AgentID, winAmount)
	return err
}

// finishMatch marks the match settled once zero wagers remain pending.
// Never flips is_settled earlier than that.
func (a *Applier) finishMatch(ctx context.Context, match *domain.Match, winner string) error {
	remaining, err := a.wagers.CountPendingByMatch(ctx, a.pool, match.ID)
	if err != nil {
		return fmt.Errorf("count pending wagers: %w", err)
	}
	if remaining > 0 {
		a.logger.Warn("match not yet fully settled, leaving open",
			"match_id", match.ID, "pending", remaining)
		return nil
	}

	flipped, err := a.matches.MarkSettled(ctx, a.pool, match.ID)
	if err != nil {
		return fmt.Errorf("mark match settled: %w", err)
	}
	if flipped {
		if err := a.outbox.Insert(ctx, a.pool, domain.NewMatchSettledEvent(match.ID, winner)); err != nil {
			a.logger.Error("match settled event insert failed", "match_id", match.ID, "error", err)
		}
	}
	return nil
}
