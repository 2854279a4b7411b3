package port

import (
	"context"

	"otcledger/internal/domain"
)

// Cache accelerates the pure read paths. A miss returns (nil, nil).
type Cache interface {
	SetOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id uint64) (*domain.Order, error)

	SetPosition(ctx context.Context, p *domain.LiquidityPosition) error
	GetPosition(ctx context.Context, provider domain.Identity, asset domain.Asset) (*domain.LiquidityPosition, error)
}
