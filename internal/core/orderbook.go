package core

import (
	"sort"
	"time"

	"otcledger/internal/domain"
)

// OrderBook stores sell orders by id. Ids start at 1 and increase by
// exactly 1 per creation. Orders are never deleted; matching flips
// Open to false exactly once.
type OrderBook struct {
	orders map[uint64]*domain.Order
	seq    Sequence
}

func NewOrderBook() *OrderBook {
	return &OrderBook{orders: make(map[uint64]*domain.Order)}
}

// Create stores a new open order and returns it. No validation of
// asset or amount happens at this layer: zero-amount and unknown-asset
// orders may exist, they just can never settle.
func (b *OrderBook) Create(asset domain.Asset, amount, settlerHint uint64, creator domain.Identity) *domain.Order {
	o := &domain.Order{
		ID:          b.seq.Next(),
		Asset:       asset,
		Creator:     creator,
		Amount:      amount,
		SettlerHint: settlerHint,
		Open:        true,
		CreatedAt:   time.Now().UTC(),
	}
	b.orders[o.ID] = o
	return o
}

// Get is a pure lookup.
func (b *OrderBook) Get(id uint64) (*domain.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// ByCreator returns the creator's orders ordered by id.
func (b *OrderBook) ByCreator(creator domain.Identity) []*domain.Order {
	var out []*domain.Order
	for _, o := range b.orders {
		if o.Creator == creator {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore installs an order read back from a repository and advances
// the id sequence past it.
func (b *OrderBook) Restore(o *domain.Order) {
	b.orders[o.ID] = o
	b.seq.Observe(o.ID)
}
