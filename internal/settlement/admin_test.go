package settlement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeWinner(t *testing.T) {
	match := &domain.Match{Team1: "India", Team2: "Pakistan"}

	got, err := canonicalizeWinner(match, "india")
	require.NoError(t, err)
	assert.Equal(t, "India", got)

	got, err = canonicalizeWinner(match, " Pakistan ")
	require.NoError(t, err)
	assert.Equal(t, "Pakistan", got)

	got, err = canonicalizeWinner(match, "draw")
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerDraw, got)

	_, err = canonicalizeWinner(match, "Australia")
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

type fakeFancyRepo struct {
	market   *domain.FancyMarket
	declared bool
	declares int
}

func (f *fakeFancyRepo) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.FancyMarket, error) {
	return f.market, nil
}

func (f *fakeFancyRepo) ListStaleUnsettled(ctx context.Context, db repository.DBTX, cutoff time.Time) ([]domain.FancyMarket, error) {
	return nil, nil
}

func (f *fakeFancyRepo) ListDeclaredWithPending(ctx context.Context, db repository.DBTX) ([]domain.FancyMarket, error) {
	return nil, nil
}

func (f *fakeFancyRepo) Declare(ctx context.Context, db repository.DBTX, id uuid.UUID, result *int) (bool, error) {
	f.declares++
	return f.declared, nil
}

type fakeWagerRepo struct {
	pendingByFancyCalls int
}

func (f *fakeWagerRepo) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Wager, error) {
	return nil, nil
}

func (f *fakeWagerRepo) Insert(ctx context.Context, db repository.DBTX, w *domain.Wager) error {
	return nil
}

func (f *fakeWagerRepo) ListPendingByMatch(ctx context.Context, db repository.DBTX, matchID uuid.UUID) ([]domain.Wager, error) {
	return nil, nil
}

func (f *fakeWagerRepo) ListAllPendingByMatch(ctx context.Context, db repository.DBTX, matchID uuid.UUID) ([]domain.Wager, error) {
	return nil, nil
}

func (f *fakeWagerRepo) ListPendingByFancy(ctx context.Context, db repository.DBTX, marketID uuid.UUID) ([]domain.Wager, error) {
	f.pendingByFancyCalls++
	return nil, nil
}

func (f *fakeWagerRepo) CountPendingByMatch(ctx context.Context, db repository.DBTX, matchID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeWagerRepo) LockForSettle(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wager, error) {
	return nil, nil
}

func (f *fakeWagerRepo) MarkSettled(ctx context.Context, db repository.DBTX, id uuid.UUID, status domain.WagerStatus, payout int64) error {
	return nil
}

func fancyFixture(market *domain.FancyMarket, declareWins bool) (*AdminService, *fakeFancyRepo, *fakeWagerRepo, *fakeOutboxRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fancies := &fakeFancyRepo{market: market, declared: declareWins}
	wagers := &fakeWagerRepo{}
	outbox := &fakeOutboxRepo{}
	applier := NewApplier(nil, nil, wagers, fancies, nil, outbox, nil, nil, logger)
	admin := NewAdminService(nil, nil, fancies, wagers, applier, logger)
	return admin, fancies, wagers, outbox
}

func TestManualFancySettleVoidedMarketRejected(t *testing.T) {
	market := &domain.FancyMarket{ID: uuid.New(), Settled: true}
	admin, _, _, _ := fancyFixture(market, false)

	_, err := admin.ManualFancySettle(context.Background(), market.ID, 85, "admin")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_SETTLED", appErr.Code)
}

func TestManualFancySettleDifferentResultRejected(t *testing.T) {
	declared := 85
	market := &domain.FancyMarket{ID: uuid.New(), Settled: true, ResultValue: &declared}
	admin, fancies, _, _ := fancyFixture(market, false)

	_, err := admin.ManualFancySettle(context.Background(), market.ID, 70, "admin")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, 0, fancies.declares, "a declared market must never be re-declared")
}

func TestManualFancySettleSameResultReentersWagerPass(t *testing.T) {
	declared := 85
	market := &domain.FancyMarket{ID: uuid.New(), Settled: true, ResultValue: &declared}
	admin, fancies, wagers, _ := fancyFixture(market, false)

	report, err := admin.ManualFancySettle(context.Background(), market.ID, 85, "admin")
	require.NoError(t, err)
	assert.Zero(t, report.Resolved)
	assert.Equal(t, 0, fancies.declares, "a declared market must never be re-declared")
	assert.Equal(t, 1, wagers.pendingByFancyCalls,
		"same-result retry must re-run the wager pass over whatever is still pending")
}

func TestSettleFancyLostDeclarationRace(t *testing.T) {
	market := &domain.FancyMarket{ID: uuid.New()}
	admin, _, wagers, outbox := fancyFixture(market, false)

	_, err := admin.applier.SettleFancy(context.Background(), market, 85, "admin")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_SETTLED", appErr.Code)
	assert.Empty(t, outbox.drafts, "losing the declaration race must not publish a declared event")
	assert.Zero(t, wagers.pendingByFancyCalls)
}

func TestVoidFancyLostDeclarationRace(t *testing.T) {
	market := &domain.FancyMarket{ID: uuid.New()}
	admin, _, wagers, _ := fancyFixture(market, false)

	_, err := admin.applier.VoidFancy(context.Background(), market, "no result", "fancy-sweep")
	require.True(t, domain.IsAlreadySettled(err))
	assert.Zero(t, wagers.pendingByFancyCalls)
}

func TestResettleFancyRequiresDeclaredResult(t *testing.T) {
	market := &domain.FancyMarket{ID: uuid.New()}
	admin, _, _, _ := fancyFixture(market, false)

	_, err := admin.applier.ResettleFancy(context.Background(), market, "fancy-sweep")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}
