package domain

import "time"

// Match records one settled order: the seller's input asset exchanged
// for the provider's reserved output asset at the oracle rate.
type Match struct {
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
