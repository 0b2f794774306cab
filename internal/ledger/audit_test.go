package ledger

import (
	"testing"

	"github.com/crickbet/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(t domain.TransactionType, amount, before, after int64) domain.Transaction {
	return domain.Transaction{
		ID:            uuid.New(),
		Type:          t,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	}
}

func checkByName(t *testing.T, checks []InvariantCheck, name string) InvariantCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "missing check", "no invariant named %s", name)
	return InvariantCheck{}
}

func TestValidateLedgerCleanHistory(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 1750}
	entries := []domain.Transaction{
		entry(domain.TxDeposit, 1000, 0, 1000),
		entry(domain.TxWagerStake, 1000, 1000, 0),
		entry(domain.TxWagerWin, 1750, 0, 1750),
	}

	checks := ValidateLedger(account, entries)
	assert.True(t, checkByName(t, checks, "chain_integrity").Passed)
	assert.True(t, checkByName(t, checks, "balance_parity").Passed)
}

func TestValidateLedgerEmpty(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 0}
	checks := ValidateLedger(account, nil)
	assert.True(t, checkByName(t, checks, "chain_integrity").Passed)
	assert.True(t, checkByName(t, checks, "balance_parity").Passed)
}

func TestValidateLedgerBrokenArithmetic(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 900}
	entries := []domain.Transaction{
		// after should be 900, not 950
		entry(domain.TxWagerStake, 100, 1000, 950),
	}

	checks := ValidateLedger(account, entries)
	assert.False(t, checkByName(t, checks, "chain_integrity").Passed)
}

func TestValidateLedgerBrokenChain(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 500}
	entries := []domain.Transaction{
		entry(domain.TxDeposit, 1000, 0, 1000),
		// before does not pick up from the prior after
		entry(domain.TxWagerStake, 500, 900, 400),
	}

	checks := ValidateLedger(account, entries)
	c := checkByName(t, checks, "chain_integrity")
	assert.False(t, c.Passed)
	assert.Contains(t, c.Detail, "does not chain")
}

func TestValidateLedgerBalanceDrift(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 1200}
	entries := []domain.Transaction{
		entry(domain.TxDeposit, 1000, 0, 1000),
	}

	checks := ValidateLedger(account, entries)
	assert.True(t, checkByName(t, checks, "chain_integrity").Passed)
	c := checkByName(t, checks, "balance_parity")
	assert.False(t, c.Passed)
	assert.Equal(t, "account=1200 ledger=1000", c.Detail)
}

func TestValidateLedgerRefundChain(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Balance: 1000}
	entries := []domain.Transaction{
		entry(domain.TxDeposit, 1000, 0, 1000),
		entry(domain.TxWagerStake, 250, 1000, 750),
		entry(domain.TxWagerRefund, 250, 750, 1000),
	}

	checks := ValidateLedger(account, entries)
	assert.True(t, checkByName(t, checks, "chain_integrity").Passed)
	assert.True(t, checkByName(t, checks, "balance_parity").Passed)
}
