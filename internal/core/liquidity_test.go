package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otcledger/internal/core"
	"otcledger/internal/domain"
)

func TestLiquidityUpsertCreatesThenMerges(t *testing.T) {
	var seq core.Sequence
	r := core.NewLiquidityRegistry(&seq)

	p1, created := r.Upsert("lp", domain.USDC, 100)
	require.True(t, created)
	assert.Equal(t, uint64(1), p1.ID)
	assert.Equal(t, uint64(100), p1.Amount)

	p2, created := r.Upsert("lp", domain.USDC, 50)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, uint64(150), p2.Amount)
}

func TestLiquidityPositionIDsUniqueAcrossPairs(t *testing.T) {
	var seq core.Sequence
	r := core.NewLiquidityRegistry(&seq)

	a, _ := r.Upsert("lp", domain.USDC, 1)
	b, _ := r.Upsert("lp", domain.WETH, 1)
	c, _ := r.Upsert("other", domain.USDC, 1)
	assert.Equal(t, uint64(1), a.ID)
	assert.Equal(t, uint64(2), b.ID)
	assert.Equal(t, uint64(3), c.ID)
}

func TestLiquidityPositionLookup(t *testing.T) {
	var seq core.Sequence
	r := core.NewLiquidityRegistry(&seq)

	_, ok := r.Position("lp", domain.USDC)
	assert.False(t, ok)

	r.Upsert("lp", domain.USDC, 42)
	p, ok := r.Position("lp", domain.USDC)
	require.True(t, ok)
	assert.Equal(t, uint64(42), p.Amount)

	// The paired asset's pool stays separate.
	_, ok = r.Position("lp", domain.WETH)
	assert.False(t, ok)
}

func TestLiquidityRestoreAdvancesSequence(t *testing.T) {
	var seq core.Sequence
	r := core.NewLiquidityRegistry(&seq)

	r.Restore(&domain.LiquidityPosition{ID: 7, Asset: domain.WETH, Provider: "lp", Amount: 9})
	p, _ := r.Upsert("lp", domain.USDC, 1)
	assert.Equal(t, uint64(8), p.ID)
}
