//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/crickbet/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSettleFlow(t *testing.T) {
	env := testutil.NewTestEnv(t)

	agents := env.SeedAgentChain("2.5", "1.5", "1")
	winnerAcct := env.SeedAccount(10000, &agents[0])
	loserAcct := env.SeedAccount(10000, nil)
	matchID := env.SeedMatch("India", "Australia")

	winnerWager := env.PlaceWager(winnerAcct, matchID, nil, "India", 1000, 175)
	loserWager := env.PlaceWager(loserAcct, matchID, nil, "Australia", 2000, 150)

	// Stakes debited at placement
	assert.Equal(t, int64(9000), env.AccountBalance(winnerAcct))
	assert.Equal(t, int64(8000), env.AccountBalance(loserAcct))

	resp := env.POST("/admin/matches/"+matchID.String()+"/settle", map[string]string{"winner": "India"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Resolved int `json:"resolved"`
		Skipped  int `json:"skipped"`
	}
	env.DecodeBody(resp, &report)
	assert.Equal(t, 2, report.Resolved)

	// Winner credited the full payout (1000 * 1.75), loser gets nothing
	assert.Equal(t, int64(10750), env.AccountBalance(winnerAcct))
	assert.Equal(t, int64(8000), env.AccountBalance(loserAcct))

	status, payout := env.WagerStatus(winnerWager)
	assert.Equal(t, "won", status)
	assert.Equal(t, int64(1750), payout)

	status, payout = env.WagerStatus(loserWager)
	assert.Equal(t, "lost", status)
	assert.Equal(t, int64(0), payout)

	t.Run("commission cascade recorded", func(t *testing.T) {
		var count int
		err := env.Pool.QueryRow(context.Background(),
			"SELECT count(*) FROM commissions WHERE wager_id = $1", winnerWager).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		var total int64
		err = env.Pool.QueryRow(context.Background(),
			"SELECT coalesce(sum(amount), 0) FROM commissions WHERE wager_id = $1", winnerWager).Scan(&total)
		require.NoError(t, err)
		// per-tier truncation: 43 + 26 + 17
		assert.Equal(t, int64(86), total)
	})

	t.Run("second settle is rejected", func(t *testing.T) {
		resp := env.POST("/admin/matches/"+matchID.String()+"/settle", map[string]string{"winner": "India"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		// No double credit
		assert.Equal(t, int64(10750), env.AccountBalance(winnerAcct))
	})

	t.Run("ledger audit passes", func(t *testing.T) {
		resp := env.GET("/admin/accounts/" + winnerAcct.String() + "/audit")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var audit struct {
			AllPassed  bool `json:"all_passed"`
			EntryCount int  `json:"entry_count"`
		}
		env.DecodeBody(resp, &audit)
		assert.True(t, audit.AllPassed)
		assert.Equal(t, 3, audit.EntryCount) // deposit, stake, win
	})
}

func TestManualVoidRefundsAllStakes(t *testing.T) {
	env := testutil.NewTestEnv(t)

	acct := env.SeedAccount(5000, nil)
	matchID := env.SeedMatch("England", "New Zealand")
	marketID := env.SeedFancyMarket(matchID, "6 over runs")

	primary := env.PlaceWager(acct, matchID, nil, "England", 1000, 200)
	fancy := env.PlaceWager(acct, matchID, &marketID, "ABOVE 45", 500, 180)
	assert.Equal(t, int64(3500), env.AccountBalance(acct))

	resp := env.POST("/admin/matches/"+matchID.String()+"/void", map[string]string{"reason": "rain"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Both stakes refunded, fancy included
	assert.Equal(t, int64(5000), env.AccountBalance(acct))
	status, _ := env.WagerStatus(primary)
	assert.Equal(t, "void", status)
	status, _ = env.WagerStatus(fancy)
	assert.Equal(t, "void", status)

	var settled bool
	require.NoError(t, env.Pool.QueryRow(context.Background(),
		"SELECT is_settled FROM matches WHERE id = $1", matchID).Scan(&settled))
	assert.True(t, settled)
}

func TestManualFancySettle(t *testing.T) {
	env := testutil.NewTestEnv(t)

	acct := env.SeedAccount(5000, nil)
	matchID := env.SeedMatch("India", "Pakistan")
	marketID := env.SeedFancyMarket(matchID, "10 over runs")

	above := env.PlaceWager(acct, matchID, &marketID, "ABOVE 80", 1000, 190)
	below := env.PlaceWager(acct, matchID, &marketID, "BELOW 80", 1000, 190)
	assert.Equal(t, int64(3000), env.AccountBalance(acct))

	resp := env.POST("/admin/fancy/"+marketID.String()+"/settle", map[string]int{"result": 85})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// ABOVE 80 wins at declared 85, BELOW 80 loses
	status, payout := env.WagerStatus(above)
	assert.Equal(t, "won", status)
	assert.Equal(t, int64(1900), payout)
	status, _ = env.WagerStatus(below)
	assert.Equal(t, "lost", status)

	assert.Equal(t, int64(4900), env.AccountBalance(acct))

	t.Run("redeclare is rejected", func(t *testing.T) {
		resp := env.POST("/admin/fancy/"+marketID.String()+"/settle", map[string]int{"result": 70})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestUnsettledSummary(t *testing.T) {
	env := testutil.NewTestEnv(t)

	acct := env.SeedAccount(5000, nil)
	matchID := env.SeedMatch("India", "Australia")
	env.PlaceWager(acct, matchID, nil, "India", 500, 150)

	// Mark completed without a winner so it shows as unresolved
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE matches SET status = 'completed' WHERE id = $1", matchID)
	require.NoError(t, err)

	resp := env.GET("/admin/settlement/unsettled")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		UnresolvedMatches []struct {
			ID string `json:"id"`
		} `json:"unresolved_matches"`
		PendingWagers map[string]int `json:"pending_wagers_by_match"`
	}
	env.DecodeBody(resp, &summary)

	require.Len(t, summary.UnresolvedMatches, 1)
	assert.Equal(t, matchID.String(), summary.UnresolvedMatches[0].ID)
	assert.Equal(t, 1, summary.PendingWagers[matchID.String()])
}

func TestPlaceWagerRejections(t *testing.T) {
	env := testutil.NewTestEnv(t)

	acct := env.SeedAccount(1000, nil)
	matchID := env.SeedMatch("India", "Australia")

	t.Run("insufficient balance", func(t *testing.T) {
		resp := env.POST("/wagers", map[string]interface{}{
			"account_id": acct, "match_id": matchID,
			"selection": "India", "stake": 5000, "odds": 150,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown selection", func(t *testing.T) {
		resp := env.POST("/wagers", map[string]interface{}{
			"account_id": acct, "match_id": matchID,
			"selection": "England", "stake": 100, "odds": 150,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("sub-evens odds", func(t *testing.T) {
		resp := env.POST("/wagers", map[string]interface{}{
			"account_id": acct, "match_id": matchID,
			"selection": "India", "stake": 100, "odds": 90,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
