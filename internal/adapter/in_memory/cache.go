package in_memory

import (
	"context"
	"sync"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

// Cache is the in-process stand-in for the redis cache.
type Cache struct {
	mu        sync.Mutex
	orders    map[uint64]domain.Order
	positions map[poolKey]domain.LiquidityPosition
}

var _ port.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{
		orders:    make(map[uint64]domain.Order),
		positions: make(map[poolKey]domain.LiquidityPosition),
	}
}

func (c *Cache) SetOrder(ctx context.Context, o *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[o.ID] = *o
	return nil
}

func (c *Cache) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (c *Cache) SetPosition(ctx context.Context, p *domain.LiquidityPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions[poolKey{provider: p.Provider, asset: p.Asset}] = *p
	return nil
}

func (c *Cache) GetPosition(ctx context.Context, provider domain.Identity, asset domain.Asset) (*domain.LiquidityPosition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.positions[poolKey{provider: provider, asset: asset}]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}
