package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"otcledger/internal/domain"
	"otcledger/internal/logger"
	"otcledger/internal/metrics"
	"otcledger/internal/port"
)

// Engine owns the ledger, oracle, order book and liquidity registry
// and serializes every public operation behind one mutex, so each call
// runs to completion before the next begins. Within a call all
// preconditions are checked before the first mutation; a failed call
// therefore leaves no partial effect.
//
// The in-memory state is authoritative. Repository, cache and
// publisher are optional mirrors written best-effort after a call has
// committed, matching how the host environment treats indexing.
type Engine struct {
	repo  port.Repository
	cache port.Cache
	pub   port.Publisher
	log   *logger.Logger

	operator domain.Identity

	mu      sync.Mutex
	ledger  *AccountLedger
	oracle  *PriceOracle
	book    *OrderBook
	pools   *LiquidityRegistry
	posSeq  Sequence
	matches []domain.Match
}

func NewEngine(operator domain.Identity, repo port.Repository, cache port.Cache, pub port.Publisher, log *logger.Logger) *Engine {
	e := &Engine{
		repo:     repo,
		cache:    cache,
		pub:      pub,
		log:      log,
		operator: operator,
		ledger:   NewAccountLedger(),
		oracle:   NewPriceOracle(),
		book:     NewOrderBook(),
	}
	e.pools = NewLiquidityRegistry(&e.posSeq)
	if e.log == nil {
		e.log = logger.New("engine")
	}
	return e
}

// LoadStateFromRepo rehydrates orders, balances, positions, rates and
// match history on startup.
func (e *Engine) LoadStateFromRepo(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	orders, err := e.repo.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	for _, o := range orders {
		e.book.Restore(o)
	}

	balances, err := e.repo.LoadBalances(ctx)
	if err != nil {
		return fmt.Errorf("load balances: %w", err)
	}
	for _, b := range balances {
		e.ledger.Restore(b.Owner, b.Asset, b.Amount)
	}

	positions, err := e.repo.LoadPositions(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	for _, p := range positions {
		e.pools.Restore(p)
	}

	rates, err := e.repo.LoadRates(ctx)
	if err != nil {
		return fmt.Errorf("load rates: %w", err)
	}
	for dir, rate := range rates {
		e.oracle.SetRate(dir, rate)
	}

	matches, err := e.repo.LoadRecentMatches(ctx, recentMatchLimit)
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}
	for i := len(matches) - 1; i >= 0; i-- {
		e.matches = append(e.matches, *matches[i])
	}
	return nil
}

const recentMatchLimit = 100

// CreateOrder stores a new open order and returns its id. Asset and
// amount are deliberately not validated here; an unmatched order is
// harmless and the settlement path re-validates everything.
func (e *Engine) CreateOrder(ctx context.Context, creator domain.Identity, asset domain.Asset, amount, settlerHint uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.book.Create(asset, amount, settlerHint, creator)

	e.persist(ctx, func(tx port.Tx) error {
		return tx.SaveOrder(ctx, o)
	})
	e.cacheOrder(ctx, o)
	e.publish(ctx, domain.OrderCreated{
		EventID:     uuid.NewString(),
		OrderID:     o.ID,
		Creator:     o.Creator,
		Asset:       o.Asset,
		Amount:      o.Amount,
		SettlerHint: o.SettlerHint,
		Timestamp:   o.CreatedAt,
	})
	metrics.OrdersCreated.Inc()
	return o.ID, nil
}

// GetOrder is a pure lookup.
func (e *Engine) GetOrder(ctx context.Context, id uint64) (domain.Order, error) {
	if e.cache != nil {
		if o, err := e.cache.GetOrder(ctx, id); err == nil && o != nil {
			return *o, nil
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.book.Get(id)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

// OrdersByCreator lists a creator's orders ordered by id.
func (e *Engine) OrdersByCreator(ctx context.Context, creator domain.Identity) []domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	orders := e.book.ByCreator(creator)
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		out[i] = *o
	}
	return out
}

// Mint credits the caller's balance unconditionally (simulated faucet,
// no backing reserve) and returns the new balance.
func (e *Engine) Mint(ctx context.Context, caller domain.Identity, asset domain.Asset, amount uint64) (uint64, error) {
	if !asset.Known() {
		return 0, domain.ErrUnknownAsset
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.ledger.Credit(asset, caller, amount)
	e.persist(ctx, func(tx port.Tx) error {
		return tx.SaveBalance(ctx, caller, asset, next)
	})
	metrics.Mints.Inc()
	return next, nil
}

// CreateLiquidity debits the provider's balance and merges the amount
// into the (provider, asset) pool, creating it on first contribution.
// Returns the position id, which is stable across contributions.
func (e *Engine) CreateLiquidity(ctx context.Context, provider domain.Identity, asset domain.Asset, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, domain.ErrInvalidAmount
	}
	if !asset.Known() {
		return 0, domain.ErrUnknownAsset
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	// Debit before touching the pool; a short balance aborts with no
	// pool mutation.
	if err := e.ledger.Debit(asset, provider, amount); err != nil {
		return 0, err
	}
	pos, created := e.pools.Upsert(provider, asset, amount)

	e.persist(ctx, func(tx port.Tx) error {
		if err := tx.SaveBalance(ctx, provider, asset, e.ledger.Balance(asset, provider)); err != nil {
			return err
		}
		return tx.SavePosition(ctx, pos)
	})
	e.cachePosition(ctx, pos)
	now := time.Now().UTC()
	if created {
		e.publish(ctx, domain.PositionCreated{
			EventID:    uuid.NewString(),
			PositionID: pos.ID,
			Provider:   provider,
			Asset:      asset,
			Amount:     amount,
			Timestamp:  now,
		})
	} else {
		e.publish(ctx, domain.PositionIncreased{
			EventID:    uuid.NewString(),
			PositionID: pos.ID,
			Provider:   provider,
			Asset:      asset,
			Delta:      amount,
			NewAmount:  pos.Amount,
			Timestamp:  now,
		})
	}
	metrics.Contributions.Inc()
	return pos.ID, nil
}

// MatchOrder settles an open order against the named provider's
// liquidity at the current oracle rate. Operator only. Every
// precondition is a hard check evaluated before the first mutation.
func (e *Engine) MatchOrder(ctx context.Context, caller domain.Identity, orderID uint64, provider domain.Identity) (domain.Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchOrder(ctx, caller, orderID, provider)
	if err != nil {
		metrics.MatchFailures.Inc()
		return domain.Match{}, err
	}
	metrics.Matches.Inc()
	return m, nil
}

func (e *Engine) matchOrder(ctx context.Context, caller domain.Identity, orderID uint64, provider domain.Identity) (domain.Match, error) {
	if caller != e.operator {
		return domain.Match{}, domain.ErrNotAuthorized
	}

	ord, ok := e.book.Get(orderID)
	if !ok {
		return domain.Match{}, domain.ErrOrderNotFound
	}
	if !ord.Open {
		return domain.Match{}, domain.ErrOrderClosed
	}

	seller := ord.Creator
	assetIn := ord.Asset
	amountIn := ord.Amount
	if amountIn == 0 {
		return domain.Match{}, domain.ErrInvalidAmount
	}
	if !assetIn.Known() {
		return domain.Match{}, domain.ErrUnknownAsset
	}

	assetOut := assetIn.Counter()
	dir := domain.DirectionFor(assetIn)
	rate := e.oracle.Rate(dir)
	if rate == 0 {
		return domain.Match{}, fmt.Errorf("%w: %s", domain.ErrOracleUnset, dir)
	}

	amountOut := domain.SatMul(amountIn, rate)

	// The order amount is not escrowed at creation; sufficiency is
	// re-validated now.
	if e.ledger.Balance(assetIn, seller) < amountIn {
		return domain.Match{}, domain.ErrInsufficientFunds
	}

	lpOut, ok := e.pools.Position(provider, assetOut)
	if !ok {
		return domain.Match{}, fmt.Errorf("%w: %s pool for %s", domain.ErrPositionNotFound, assetOut, provider)
	}
	if lpOut.Amount < amountOut {
		return domain.Match{}, domain.ErrInsufficientLiquidity
	}

	// The input-side pool must pre-exist, at any amount. Matching
	// never creates positions implicitly.
	lpIn, ok := e.pools.Position(provider, assetIn)
	if !ok {
		return domain.Match{}, fmt.Errorf("%w: %s pool for %s", domain.ErrPositionNotFound, assetIn, provider)
	}

	// All preconditions hold; apply the four-way adjustment and close
	// the order.
	if err := e.ledger.Debit(assetIn, seller, amountIn); err != nil {
		return domain.Match{}, err
	}
	e.ledger.Credit(assetOut, seller, amountOut)
	lpOut.Amount -= amountOut
	lpIn.Amount = domain.SatAdd(lpIn.Amount, amountIn)
	ord.Open = false

	m := domain.Match{
		OrderID:   orderID,
		Provider:  provider,
		Seller:    seller,
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Rate:      rate,
		Timestamp: time.Now().UTC(),
	}
	e.matches = append(e.matches, m)
	if len(e.matches) > recentMatchLimit {
		e.matches = e.matches[len(e.matches)-recentMatchLimit:]
	}

	e.persist(ctx, func(tx port.Tx) error {
		if err := tx.SaveOrder(ctx, ord); err != nil {
			return err
		}
		if err := tx.SaveBalance(ctx, seller, assetIn, e.ledger.Balance(assetIn, seller)); err != nil {
			return err
		}
		if err := tx.SaveBalance(ctx, seller, assetOut, e.ledger.Balance(assetOut, seller)); err != nil {
			return err
		}
		if err := tx.SavePosition(ctx, lpOut); err != nil {
			return err
		}
		if err := tx.SavePosition(ctx, lpIn); err != nil {
			return err
		}
		return tx.SaveMatch(ctx, &m)
	})
	e.cacheOrder(ctx, ord)
	e.cachePosition(ctx, lpOut)
	e.cachePosition(ctx, lpIn)
	e.publish(ctx, domain.OrderMatched{
		EventID:   uuid.NewString(),
		OrderID:   m.OrderID,
		Provider:  m.Provider,
		Seller:    m.Seller,
		AssetIn:   m.AssetIn,
		AssetOut:  m.AssetOut,
		AmountIn:  m.AmountIn,
		AmountOut: m.AmountOut,
		Rate:      m.Rate,
		Timestamp: m.Timestamp,
	})
	e.log.Info("order settled",
		"order_id", m.OrderID,
		"provider", string(m.Provider),
		"seller", string(m.Seller),
		"amount_in", m.AmountIn,
		"amount_out", m.AmountOut,
		"rate", m.Rate,
	)
	return m, nil
}

// GetLiquidity is a pure lookup of the (provider, asset) pool.
func (e *Engine) GetLiquidity(ctx context.Context, provider domain.Identity, asset domain.Asset) (domain.LiquidityPosition, error) {
	if e.cache != nil {
		if p, err := e.cache.GetPosition(ctx, provider, asset); err == nil && p != nil {
			return *p, nil
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pools.Position(provider, asset)
	if !ok {
		return domain.LiquidityPosition{}, domain.ErrPositionNotFound
	}
	return *p, nil
}

// Balance returns the caller's balance of the asset. Unknown entries,
// including unrecognized assets, read as zero; this never fails.
func (e *Engine) Balance(ctx context.Context, caller domain.Identity, asset domain.Asset) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !asset.Known() {
		return 0
	}
	return e.ledger.Balance(asset, caller)
}

// TokenAssets returns the two recognized asset identifiers.
func (e *Engine) TokenAssets() (domain.Asset, domain.Asset) { return domain.Assets() }

// SetRate overwrites a directional oracle rate. Operator only; zero is
// a valid value and marks the direction unconfigured.
func (e *Engine) SetRate(ctx context.Context, caller domain.Identity, dir domain.RateDirection, rate uint64) error {
	if caller != e.operator {
		return domain.ErrNotAuthorized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.oracle.SetRate(dir, rate)
	e.persist(ctx, func(tx port.Tx) error {
		return tx.SaveRate(ctx, dir, rate)
	})
	return nil
}

// Rate returns the configured rate for the direction, 0 if unset.
func (e *Engine) Rate(ctx context.Context, dir domain.RateDirection) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.oracle.Rate(dir)
}

// RecentMatches returns up to limit settlement records, newest first.
func (e *Engine) RecentMatches(ctx context.Context, limit int) []domain.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	if limit <= 0 || limit > len(e.matches) {
		limit = len(e.matches)
	}
	out := make([]domain.Match, 0, limit)
	for i := len(e.matches) - 1; i >= len(e.matches)-limit; i-- {
		out = append(out, e.matches[i])
	}
	return out
}

// persist mirrors one operation's writes through a repository
// transaction. Failures are logged, never surfaced: the in-memory
// state has already committed.
func (e *Engine) persist(ctx context.Context, fn func(tx port.Tx) error) {
	if e.repo == nil {
		return
	}
	tx, err := e.repo.BeginTx(ctx)
	if err != nil {
		e.log.Error("begin persistence tx", "err", err.Error())
		return
	}
	if err := fn(tx); err != nil {
		e.log.Error("persist state", "err", err.Error())
		_ = tx.Rollback(ctx)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		e.log.Error("commit persistence tx", "err", err.Error())
	}
}

func (e *Engine) cacheOrder(ctx context.Context, o *domain.Order) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetOrder(ctx, o); err != nil {
		e.log.Warn("cache order", "order_id", o.ID, "err", err.Error())
	}
}

func (e *Engine) cachePosition(ctx context.Context, p *domain.LiquidityPosition) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetPosition(ctx, p); err != nil {
		e.log.Warn("cache position", "position_id", p.ID, "err", err.Error())
	}
}

func (e *Engine) publish(ctx context.Context, ev domain.Event) {
	if e.pub == nil {
		return
	}
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.Error("publish event", "type", ev.EventType(), "key", ev.Key(), "err", err.Error())
	}
}
