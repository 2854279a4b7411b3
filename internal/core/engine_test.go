package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otcledger/internal/adapter/in_memory"
	"otcledger/internal/core"
	"otcledger/internal/domain"
)

const (
	operator = domain.Identity("admin")
	provider = domain.Identity("provider")
	taker    = domain.Identity("taker")
)

type fixture struct {
	eng  *core.Engine
	repo *in_memory.MemoryRepo
	pub  *in_memory.Publisher
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := in_memory.NewMemoryRepo()
	pub := in_memory.NewPublisher()
	return &fixture{
		eng:  core.NewEngine(operator, repo, in_memory.NewCache(), pub, nil),
		repo: repo,
		pub:  pub,
		ctx:  context.Background(),
	}
}

// fund mints balances, contributes both pools and configures both rate
// directions, mirroring the setup every settlement needs.
func (f *fixture) fund(t *testing.T, usdc, weth uint64) {
	t.Helper()
	_, err := f.eng.Mint(f.ctx, provider, domain.USDC, usdc)
	require.NoError(t, err)
	_, err = f.eng.Mint(f.ctx, provider, domain.WETH, weth)
	require.NoError(t, err)
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, usdc)
	require.NoError(t, err)
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.WETH, weth)
	require.NoError(t, err)
	require.NoError(t, f.eng.SetRate(f.ctx, operator, domain.USDCPerWETH, 200))
	require.NoError(t, f.eng.SetRate(f.ctx, operator, domain.WETHPerUSDC, 1))
}

func TestCreateOrderAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	for want := uint64(1); want <= 3; want++ {
		id, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestCreateOrderDoesNotEscrow(t *testing.T) {
	f := newFixture(t)
	// Creating an order never touches the creator's balance, even when
	// the creator holds nothing.
	id, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 1_000, 0)
	require.NoError(t, err)

	o, err := f.eng.GetOrder(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, o.Open)
	assert.Equal(t, uint64(0), f.eng.Balance(f.ctx, taker, domain.WETH))
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.GetOrder(f.ctx, 99)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMintCreditsBalance(t *testing.T) {
	f := newFixture(t)
	next, err := f.eng.Mint(f.ctx, taker, domain.USDC, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), next)

	next, err = f.eng.Mint(f.ctx, taker, domain.USDC, 250)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), next)
	assert.Equal(t, uint64(750), f.eng.Balance(f.ctx, taker, domain.USDC))
}

func TestMintRejectsUnknownAsset(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Mint(f.ctx, taker, domain.Asset("DOGE"), 1)
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)
}

func TestBalanceUnknownAssetReadsZero(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, uint64(0), f.eng.Balance(f.ctx, taker, domain.Asset("DOGE")))
}

func TestCreateLiquidityValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.Asset("DOGE"), 10)
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)

	// Unfunded provider cannot contribute.
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestCreateLiquidityMergesRepeatContributions(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Mint(f.ctx, provider, domain.USDC, 300)
	require.NoError(t, err)

	id1, err := f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 100)
	require.NoError(t, err)
	id2, err := f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 50)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	pos, err := f.eng.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), pos.Amount)
	assert.Equal(t, uint64(150), f.eng.Balance(f.ctx, provider, domain.USDC))

	events := f.pub.Events()
	require.Len(t, events, 2)
	assert.IsType(t, domain.PositionCreated{}, events[0])
	assert.IsType(t, domain.PositionIncreased{}, events[1])
	inc := events[1].(domain.PositionIncreased)
	assert.Equal(t, uint64(50), inc.Delta)
	assert.Equal(t, uint64(150), inc.NewAmount)
}

func TestGetLiquidityNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.GetLiquidity(f.ctx, provider, domain.WETH)
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
}

func TestSetRateOperatorOnly(t *testing.T) {
	f := newFixture(t)
	err := f.eng.SetRate(f.ctx, taker, domain.USDCPerWETH, 200)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, uint64(0), f.eng.Rate(f.ctx, domain.USDCPerWETH))

	require.NoError(t, f.eng.SetRate(f.ctx, operator, domain.USDCPerWETH, 200))
	assert.Equal(t, uint64(200), f.eng.Rate(f.ctx, domain.USDCPerWETH))
}

func TestMatchOrderSellWETHForUSDC(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)

	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 3)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	m, err := f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	require.NoError(t, err)

	assert.Equal(t, domain.WETH, m.AssetIn)
	assert.Equal(t, domain.USDC, m.AssetOut)
	assert.Equal(t, uint64(2), m.AmountIn)
	assert.Equal(t, uint64(400), m.AmountOut)
	assert.Equal(t, uint64(200), m.Rate)
	assert.Equal(t, taker, m.Seller)
	assert.Equal(t, provider, m.Provider)

	// Seller side: 2 WETH out, 400 USDC in.
	assert.Equal(t, uint64(1), f.eng.Balance(f.ctx, taker, domain.WETH))
	assert.Equal(t, uint64(400), f.eng.Balance(f.ctx, taker, domain.USDC))

	// Provider side: USDC pool pays 400, WETH pool absorbs 2.
	usdcPool, err := f.eng.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, err)
	assert.Equal(t, uint64(999_600), usdcPool.Amount)
	wethPool, err := f.eng.GetLiquidity(f.ctx, provider, domain.WETH)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), wethPool.Amount)

	o, err := f.eng.GetOrder(f.ctx, orderID)
	require.NoError(t, err)
	assert.False(t, o.Open)

	events := f.pub.Events()
	last := events[len(events)-1]
	matched, ok := last.(domain.OrderMatched)
	require.True(t, ok)
	assert.Equal(t, orderID, matched.OrderID)
	assert.Equal(t, uint64(400), matched.AmountOut)
	assert.NotEmpty(t, matched.EventID)

	recent := f.eng.RecentMatches(f.ctx, 10)
	require.Len(t, recent, 1)
	assert.Equal(t, orderID, recent[0].OrderID)
}

func TestMatchOrderSellUSDCForWETH(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)

	_, err := f.eng.Mint(f.ctx, taker, domain.USDC, 5)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.USDC, 5, 0)
	require.NoError(t, err)

	m, err := f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	require.NoError(t, err)
	assert.Equal(t, domain.WETH, m.AssetOut)
	assert.Equal(t, uint64(5), m.AmountOut)

	assert.Equal(t, uint64(0), f.eng.Balance(f.ctx, taker, domain.USDC))
	assert.Equal(t, uint64(5), f.eng.Balance(f.ctx, taker, domain.WETH))

	wethPool, err := f.eng.GetLiquidity(f.ctx, provider, domain.WETH)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), wethPool.Amount)
	usdcPool, err := f.eng.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_005), usdcPool.Amount)
}

func TestMatchOrderRejectsNonOperator(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, taker, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// Nothing moved; the order is still matchable.
	o, getErr := f.eng.GetOrder(f.ctx, orderID)
	require.NoError(t, getErr)
	assert.True(t, o.Open)
	assert.Equal(t, uint64(2), f.eng.Balance(f.ctx, taker, domain.WETH))
}

func TestMatchOrderUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.MatchOrder(f.ctx, operator, 42, provider)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMatchOrderClosedOrder(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 4)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrOrderClosed)

	// The second attempt moved nothing.
	assert.Equal(t, uint64(2), f.eng.Balance(f.ctx, taker, domain.WETH))
	assert.Equal(t, uint64(400), f.eng.Balance(f.ctx, taker, domain.USDC))
}

func TestMatchOrderZeroAmount(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 0, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestMatchOrderUnknownAsset(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.Asset("DOGE"), 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)
}

func TestMatchOrderMissingRate(t *testing.T) {
	f := newFixture(t)
	// Pools exist but no rate is configured.
	_, err := f.eng.Mint(f.ctx, provider, domain.USDC, 1_000)
	require.NoError(t, err)
	_, err = f.eng.Mint(f.ctx, provider, domain.WETH, 10)
	require.NoError(t, err)
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 1_000)
	require.NoError(t, err)
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.WETH, 10)
	require.NoError(t, err)

	_, err = f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrOracleUnset)
}

func TestMatchOrderSellerShortOfFunds(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)

	// The order amount is not escrowed, so the seller can spend the
	// balance after creating the order.
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 1)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	o, getErr := f.eng.GetOrder(f.ctx, orderID)
	require.NoError(t, getErr)
	assert.True(t, o.Open)
}

func TestMatchOrderMissingOutputPool(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.SetRate(f.ctx, operator, domain.USDCPerWETH, 200))

	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
}

func TestMatchOrderMissingInputPool(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.SetRate(f.ctx, operator, domain.USDCPerWETH, 200))

	// The output-side pool is funded; only the input-side pool is
	// absent, and matching never creates it implicitly.
	_, err := f.eng.Mint(f.ctx, provider, domain.USDC, 1_000_000)
	require.NoError(t, err)
	_, err = f.eng.CreateLiquidity(f.ctx, provider, domain.USDC, 1_000_000)
	require.NoError(t, err)

	_, err = f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)

	// The funded output pool is untouched.
	pool, poolErr := f.eng.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, poolErr)
	assert.Equal(t, uint64(1_000_000), pool.Amount)
}

func TestMatchOrderInsufficientLiquidity(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 300, 10) // pool pays at most 300 USDC, the order needs 400

	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)

	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	assert.ErrorIs(t, err, domain.ErrInsufficientLiquidity)

	// State is exactly as before the attempt.
	assert.Equal(t, uint64(2), f.eng.Balance(f.ctx, taker, domain.WETH))
	usdcPool, poolErr := f.eng.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, poolErr)
	assert.Equal(t, uint64(300), usdcPool.Amount)
	wethPool, poolErr := f.eng.GetLiquidity(f.ctx, provider, domain.WETH)
	require.NoError(t, poolErr)
	assert.Equal(t, uint64(10), wethPool.Amount)
	o, getErr := f.eng.GetOrder(f.ctx, orderID)
	require.NoError(t, getErr)
	assert.True(t, o.Open)
}

func TestOrdersByCreator(t *testing.T) {
	f := newFixture(t)
	id1, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 1, 0)
	require.NoError(t, err)
	_, err = f.eng.CreateOrder(f.ctx, provider, domain.USDC, 2, 0)
	require.NoError(t, err)
	id3, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 3, 0)
	require.NoError(t, err)

	orders := f.eng.OrdersByCreator(f.ctx, taker)
	require.Len(t, orders, 2)
	assert.Equal(t, id1, orders[0].ID)
	assert.Equal(t, id3, orders[1].ID)
}

func TestRecentMatchesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 100)
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 10)
	require.NoError(t, err)

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 1, 0)
		require.NoError(t, err)
		_, err = f.eng.MatchOrder(f.ctx, operator, id, provider)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent := f.eng.RecentMatches(f.ctx, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].OrderID)
	assert.Equal(t, ids[1], recent[1].OrderID)
}

func TestEngineRestartRestoresState(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 3)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)
	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	require.NoError(t, err)

	// A fresh engine over the same repository sees the same world.
	eng2 := core.NewEngine(operator, f.repo, nil, nil, nil)
	require.NoError(t, eng2.LoadStateFromRepo(f.ctx))

	assert.Equal(t, uint64(400), eng2.Balance(f.ctx, taker, domain.USDC))
	assert.Equal(t, uint64(1), eng2.Balance(f.ctx, taker, domain.WETH))
	pool, err := eng2.GetLiquidity(f.ctx, provider, domain.USDC)
	require.NoError(t, err)
	assert.Equal(t, uint64(999_600), pool.Amount)
	o, err := eng2.GetOrder(f.ctx, orderID)
	require.NoError(t, err)
	assert.False(t, o.Open)
	assert.Equal(t, uint64(200), eng2.Rate(f.ctx, domain.USDCPerWETH))
	require.Len(t, eng2.RecentMatches(f.ctx, 10), 1)

	// Id sequences resume past restored entries.
	nextID, err := eng2.CreateOrder(f.ctx, taker, domain.WETH, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, orderID+1, nextID)
}

func TestEventSequenceForFullFlow(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1_000_000, 10)
	_, err := f.eng.Mint(f.ctx, taker, domain.WETH, 2)
	require.NoError(t, err)
	orderID, err := f.eng.CreateOrder(f.ctx, taker, domain.WETH, 2, 0)
	require.NoError(t, err)
	_, err = f.eng.MatchOrder(f.ctx, operator, orderID, provider)
	require.NoError(t, err)

	var types []string
	for _, ev := range f.pub.Events() {
		types = append(types, ev.EventType())
	}
	assert.Equal(t, []string{
		"position.created",
		"position.created",
		"order.created",
		"order.matched",
	}, types)
}
