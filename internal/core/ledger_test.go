package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otcledger/internal/core"
	"otcledger/internal/domain"
)

func TestLedgerUnknownBalanceReadsZero(t *testing.T) {
	l := core.NewAccountLedger()
	assert.Equal(t, uint64(0), l.Balance(domain.USDC, "nobody"))
}

func TestLedgerCreditDebit(t *testing.T) {
	l := core.NewAccountLedger()

	assert.Equal(t, uint64(100), l.Credit(domain.USDC, "alice", 100))
	assert.Equal(t, uint64(100), l.Balance(domain.USDC, "alice"))

	// Balances per asset are independent.
	assert.Equal(t, uint64(0), l.Balance(domain.WETH, "alice"))

	require.NoError(t, l.Debit(domain.USDC, "alice", 40))
	assert.Equal(t, uint64(60), l.Balance(domain.USDC, "alice"))

	err := l.Debit(domain.USDC, "alice", 61)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, uint64(60), l.Balance(domain.USDC, "alice"))
}

func TestLedgerCreditSaturates(t *testing.T) {
	l := core.NewAccountLedger()
	l.Credit(domain.WETH, "alice", math.MaxUint64)
	assert.Equal(t, uint64(math.MaxUint64), l.Credit(domain.WETH, "alice", 1))
}

func TestLedgerDebitAllowsExactBalance(t *testing.T) {
	l := core.NewAccountLedger()
	l.Credit(domain.USDC, "bob", 10)
	require.NoError(t, l.Debit(domain.USDC, "bob", 10))
	assert.Equal(t, uint64(0), l.Balance(domain.USDC, "bob"))
}
