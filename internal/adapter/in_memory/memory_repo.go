package in_memory

import (
	"context"
	"sync"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

type balanceKey struct {
	owner domain.Identity
	asset domain.Asset
}

type poolKey struct {
	provider domain.Identity
	asset    domain.Asset
}

// MemoryRepo keeps the persistence mirror in process. It backs tests
// and standalone runs where no Postgres is configured.
type MemoryRepo struct {
	mu        sync.Mutex
	orders    map[uint64]domain.Order
	balances  map[balanceKey]uint64
	positions map[poolKey]domain.LiquidityPosition
	rates     map[domain.RateDirection]uint64
	matches   []domain.Match
}

var _ port.Repository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:    make(map[uint64]domain.Order),
		balances:  make(map[balanceKey]uint64),
		positions: make(map[poolKey]domain.LiquidityPosition),
		rates:     make(map[domain.RateDirection]uint64),
	}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryRepo) SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey{owner: owner, asset: asset}] = amount
	return nil
}

func (r *MemoryRepo) SavePosition(ctx context.Context, p *domain.LiquidityPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[poolKey{provider: p.Provider, asset: p.Asset}] = *p
	return nil
}

func (r *MemoryRepo) SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[dir] = rate
	return nil
}

func (r *MemoryRepo) SaveMatch(ctx context.Context, m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, *m)
	return nil
}

func (r *MemoryRepo) LoadOrders(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepo) LoadBalances(ctx context.Context) ([]domain.BalanceEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BalanceEntry, 0, len(r.balances))
	for k, v := range r.balances {
		out = append(out, domain.BalanceEntry{Owner: k.owner, Asset: k.asset, Amount: v})
	}
	return out, nil
}

func (r *MemoryRepo) LoadPositions(ctx context.Context) ([]*domain.LiquidityPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.LiquidityPosition, 0, len(r.positions))
	for _, p := range r.positions {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepo) LoadRates(ctx context.Context) (map[domain.RateDirection]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.RateDirection]uint64, len(r.rates))
	for k, v := range r.rates {
		out[k] = v
	}
	return out, nil
}

func (r *MemoryRepo) LoadRecentMatches(ctx context.Context, limit int) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.matches) {
		limit = len(r.matches)
	}
	out := make([]*domain.Match, 0, limit)
	for i := len(r.matches) - 1; i >= len(r.matches)-limit; i-- {
		cp := r.matches[i]
		out = append(out, &cp)
	}
	return out, nil
}

// BeginTx returns a transaction that buffers writes and applies them
// on Commit, so a rolled back mirror write leaves nothing behind.
func (r *MemoryRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	return &memoryTx{repo: r}, nil
}

type memoryTx struct {
	repo *MemoryRepo
	ops  []func()
}

var _ port.Tx = (*memoryTx)(nil)

func (t *memoryTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	cp := *o
	t.ops = append(t.ops, func() { t.repo.orders[cp.ID] = cp })
	return nil
}

func (t *memoryTx) SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error {
	t.ops = append(t.ops, func() { t.repo.balances[balanceKey{owner: owner, asset: asset}] = amount })
	return nil
}

func (t *memoryTx) SavePosition(ctx context.Context, p *domain.LiquidityPosition) error {
	cp := *p
	t.ops = append(t.ops, func() { t.repo.positions[poolKey{provider: cp.Provider, asset: cp.Asset}] = cp })
	return nil
}

func (t *memoryTx) SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error {
	t.ops = append(t.ops, func() { t.repo.rates[dir] = rate })
	return nil
}

func (t *memoryTx) SaveMatch(ctx context.Context, m *domain.Match) error {
	cp := *m
	t.ops = append(t.ops, func() { t.repo.matches = append(t.repo.matches, cp) })
	return nil
}

func (t *memoryTx) Commit(ctx context.Context) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, op := range t.ops {
		op()
	}
	t.ops = nil
	return nil
}

func (t *memoryTx) Rollback(ctx context.Context) error {
	t.ops = nil
	return nil
}
