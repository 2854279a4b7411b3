package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

// RedisCache caches orders and liquidity positions as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.Cache = (*RedisCache)(nil)

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

func orderKey(id uint64) string { return "order:" + strconv.FormatUint(id, 10) }

func positionKey(provider domain.Identity, asset domain.Asset) string {
	return "pos:" + string(provider) + ":" + string(asset)
}

func (c *RedisCache) SetOrder(ctx context.Context, o *domain.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderKey(o.ID), b, c.ttl).Err()
}

func (c *RedisCache) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	b, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var o domain.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *RedisCache) SetPosition(ctx context.Context, p *domain.LiquidityPosition) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, positionKey(p.Provider, p.Asset), b, c.ttl).Err()
}

func (c *RedisCache) GetPosition(ctx context.Context, provider domain.Identity, asset domain.Asset) (*domain.LiquidityPosition, error) {
	b, err := c.client.Get(ctx, positionKey(provider, asset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.LiquidityPosition
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
