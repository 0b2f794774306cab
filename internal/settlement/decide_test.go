package settlement

import (
	"testing"

	"github.com/crickbet/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wagerOn(selection string, stake int64, odds int) *domain.Wager {
	return &domain.Wager{
		Selection:       selection,
		Stake:           stake,
		Odds:            odds,
		PotentialPayout: domain.PotentialPayoutFor(stake, odds),
		Status:          domain.WagerPending,
	}
}

func TestDecideWager(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		winner    string
		status    domain.WagerStatus
		credit    int64
	}{
		{"winner matched", "India", "India", domain.WagerWon, 1750},
		{"winner case insensitive", "india", "India", domain.WagerWon, 1750},
		{"loser", "Pakistan", "India", domain.WagerLost, 0},
		{"draw sentinel wins draw selection", "DRAW", "DRAW", domain.WagerWon, 1750},
		{"team selection loses on draw", "India", "DRAW", domain.WagerLost, 0},
		{"other team loses on draw", "Pakistan", "DRAW", domain.WagerLost, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecideWager(wagerOn(tt.selection, 1000, 175), tt.winner)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.credit, d.Credit)
		})
	}
}

func TestDecideWagerPayoutIsPotentialNotStake(t *testing.T) {
	w := wagerOn("India", 500, 250)
	d := DecideWager(w, "India")
	assert.Equal(t, int64(1250), d.Credit)
	assert.Equal(t, w.PotentialPayout, d.Credit)
}

func TestDecideVoidRefundsStakeExactly(t *testing.T) {
	w := wagerOn("India", 500, 250)
	d := DecideVoid(w)
	assert.Equal(t, domain.WagerVoid, d.Status)
	assert.Equal(t, int64(500), d.Credit, "void refunds the stake, never the payout")
}

func TestDecideFancy(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		declared  int
		status    domain.WagerStatus
	}{
		{"above met", "ABOVE 35", 40, domain.WagerWon},
		{"above at threshold", "ABOVE 35", 35, domain.WagerWon},
		{"above missed", "ABOVE 35", 34, domain.WagerLost},
		{"below met", "BELOW 32", 31, domain.WagerWon},
		{"below at threshold loses", "BELOW 32", 32, domain.WagerLost},
		{"lowercase claim", "above 10", 12, domain.WagerWon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecideFancy(wagerOn(tt.selection, 1000, 180), tt.declared)
			require.NoError(t, err)
			assert.Equal(t, tt.status, d.Status)
			if tt.status == domain.WagerWon {
				assert.Equal(t, int64(1800), d.Credit)
			}
		})
	}
}

func TestDecideFancyMalformedClaim(t *testing.T) {
	for _, sel := range []string{"", "ABOVE", "SIDEWAYS 35", "ABOVE thirty", "ABOVE 35 40"} {
		_, err := DecideFancy(wagerOn(sel, 100, 180), 40)
		require.Error(t, err, "selection %q", sel)
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}
