package domain

import (
	"strconv"
	"time"
)

// Event is a notification produced after a successful mutating
// operation and consumed by an external indexer.
type Event interface {
	// EventType names the event for routing and headers.
	EventType() string
	// Key identifies the entity the event is about.
	Key() string
}

type OrderCreated struct {
	EventID     string    `json:"event_id"`
	OrderID     uint64    `json:"order_id"`
	Creator     Identity  `json:"creator"`
	Asset       Asset     `json:"asset"`
	Amount      uint64    `json:"amount"`
	SettlerHint uint64    `json:"settler_hint"`
	Timestamp   time.Time `json:"timestamp"`
}

func (OrderCreated) EventType() string { return "order.created" }
func (e OrderCreated) Key() string     { return strconv.FormatUint(e.OrderID, 10) }

type PositionCreated struct {
	EventID    string    `json:"event_id"`
	PositionID uint64    `json:"position_id"`
	Provider   Identity  `json:"provider"`
	Asset      Asset     `json:"asset"`
	Amount     uint64    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

func (PositionCreated) EventType() string { return "position.created" }
func (e PositionCreated) Key() string     { return string(e.Provider) + ":" + string(e.Asset) }

type PositionIncreased struct {
	EventID    string    `json:"event_id"`
	PositionID uint64    `json:"position_id"`
	Provider   Identity  `json:"provider"`
	Asset      Asset     `json:"asset"`
	Delta      uint64    `json:"delta"`
	NewAmount  uint64    `json:"new_amount"`
	Timestamp  time.Time `json:"timestamp"`
}

func (PositionIncreased) EventType() string { return "position.increased" }
func (e PositionIncreased) Key() string     { return string(e.Provider) + ":" + string(e.Asset) }

type OrderMatched struct {
	EventID   string    `json:"event_id"`
	OrderID   uint64    `json:"order_id"`
	Provider  Identity  `json:"provider"`
	Seller    Identity  `json:"seller"`
	AssetIn   Asset     `json:"asset_in"`
	AssetOut  Asset     `json:"asset_out"`
	AmountIn  uint64    `json:"amount_in"`
	AmountOut uint64    `json:"amount_out"`
	Rate      uint64    `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

func (OrderMatched) EventType() string { return "order.matched" }
func (e OrderMatched) Key() string     { return strconv.FormatUint(e.OrderID, 10) }
