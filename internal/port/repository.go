package port

import (
	"context"

	"otcledger/internal/domain"
)

// Repository persists ledger state. The in-memory engine state is
// authoritative; repository writes are best-effort mirrors used for
// rehydration on startup.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error
	SavePosition(ctx context.Context, p *domain.LiquidityPosition) error
	SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error
	SaveMatch(ctx context.Context, m *domain.Match) error

	LoadOrders(ctx context.Context) ([]*domain.Order, error)
	LoadBalances(ctx context.Context) ([]domain.BalanceEntry, error)
	LoadPositions(ctx context.Context) ([]*domain.LiquidityPosition, error)
	LoadRates(ctx context.Context) (map[domain.RateDirection]uint64, error)
	LoadRecentMatches(ctx context.Context, limit int) ([]*domain.Match, error)

	BeginTx(ctx context.Context) (Tx, error)
}

// Tx groups the writes of one engine operation so the mirror either
// records all of them or none.
type Tx interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error
	SavePosition(ctx context.Context, p *domain.LiquidityPosition) error
	SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error
	SaveMatch(ctx context.Context, m *domain.Match) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
