//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GET performs a GET request against the test server.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with a JSON body.
func (env *TestEnv) POST(path string, body interface{}) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DecodeBody decodes a response body into dst and closes it.
func (env *TestEnv) DecodeBody(resp *http.Response, dst interface{}) {
	env.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		env.t.Fatalf("decode response: %v", err)
	}
}

// SeedAccount inserts an account with an opening balance. The opening balance
// is written as a deposit ledger entry so audits pass.
func (env *TestEnv) SeedAccount(balance int64, agentID *uuid.UUID) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accountID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO accounts (id, balance, currency, agent_id)
		VALUES ($1, $2, 'INR', $3)`,
		accountID, balance, agentID)
	if err != nil {
		env.t.Fatalf("SeedAccount: insert: %v", err)
	}

	if balance > 0 {
		_, err = env.Pool.Exec(ctx, `
			INSERT INTO ledger_entries (account_id, type, amount, balance_before, balance_after, processed_by)
			VALUES ($1, 'deposit', $2, 0, $2, 'test')`,
			accountID, balance)
		if err != nil {
			env.t.Fatalf("SeedAccount: opening entry: %v", err)
		}
	}
	return accountID
}

// SeedMatch inserts a completed match awaiting settlement.
func (env *TestEnv) SeedMatch(team1, team2 string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	matchID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO matches (id, team1, team2, status, ends_at)
		VALUES ($1, $2, $3, 'live', $4)`,
		matchID, team1, team2, time.Now().Add(-time.Hour))
	if err != nil {
		env.t.Fatalf("SeedMatch: %v", err)
	}
	return matchID
}

// CompleteMatch flips a seeded match to completed so sweeps pick it up.
func (env *TestEnv) CompleteMatch(matchID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE matches SET status = 'completed' WHERE id = $1", matchID)
	if err != nil {
		env.t.Fatalf("CompleteMatch: %v", err)
	}
}

// SeedFancyMarket inserts an open fancy market on a match.
func (env *TestEnv) SeedFancyMarket(matchID uuid.UUID, name string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	marketID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO fancy_markets (id, match_id, name, no_value, yes_value)
		VALUES ($1, $2, $3, 44, 46)`,
		marketID, matchID, name)
	if err != nil {
		env.t.Fatalf("SeedFancyMarket: %v", err)
	}
	return marketID
}

// SeedAgentChain inserts a bottom-up agent chain with the given commission
// rates and returns the IDs bottom first.
func (env *TestEnv) SeedAgentChain(rates ...string) []uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	types := []string{"agent", "master", "super_master"}
	ids := make([]uuid.UUID, len(rates))
	var parentID *uuid.UUID

	// Insert top-down so parent FKs exist
	for i := len(rates) - 1; i >= 0; i-- {
		id := uuid.New()
		tier := types[0]
		if i < len(types) {
			tier = types[i]
		}
		_, err := env.Pool.Exec(ctx, `
			INSERT INTO agents (id, name, type, parent_id, commission_rate)
			VALUES ($1, $2, $3, $4, $5)`,
			id, fmt.Sprintf("agent-%d", i), tier, parentID, rates[i])
		if err != nil {
			env.t.Fatalf("SeedAgentChain: %v", err)
		}
		ids[i] = id
		parentID = &id
	}
	return ids
}

// PlaceWager places a wager through the API and returns the wager ID.
func (env *TestEnv) PlaceWager(accountID, matchID uuid.UUID, fancyID *uuid.UUID, selection string, stake int64, odds int) uuid.UUID {
	env.t.Helper()
	body := map[string]interface{}{
		"account_id": accountID,
		"match_id":   matchID,
		"selection":  selection,
		"stake":      stake,
		"odds":       odds,
	}
	if fancyID != nil {
		body["fancy_market_id"] = fancyID
	}

	resp := env.POST("/wagers", body)
	if resp.StatusCode != http.StatusCreated {
		defer resp.Body.Close()
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		env.t.Fatalf("PlaceWager: expected 201, got %d (%v)", resp.StatusCode, errBody)
	}

	var wager struct {
		ID uuid.UUID `json:"id"`
	}
	env.DecodeBody(resp, &wager)
	return wager.ID
}

// AccountBalance reads the current account balance.
func (env *TestEnv) AccountBalance(accountID uuid.UUID) int64 {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var balance int64
	err := env.Pool.QueryRow(ctx,
		"SELECT balance FROM accounts WHERE id = $1", accountID).Scan(&balance)
	if err != nil {
		env.t.Fatalf("AccountBalance: %v", err)
	}
	return balance
}

// WagerStatus reads a wager's status and actual payout.
func (env *TestEnv) WagerStatus(wagerID uuid.UUID) (status string, payout int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := env.Pool.QueryRow(ctx,
		"SELECT status, actual_payout FROM wagers WHERE id = $1", wagerID).Scan(&status, &payout)
	if err != nil {
		env.t.Fatalf("WagerStatus: %v", err)
	}
	return status, payout
}
