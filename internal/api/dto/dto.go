package dto

import "time"

type CreateOrderRequest struct {
	Asset       string `json:"asset" binding:"required"`
	Amount      uint64 `json:"amount"`
	SettlerHint uint64 `json:"settler_hint"`
}

type CreateOrderResponse struct {
	OrderID uint64 `json:"order_id"`
}

type Order struct {
	ID          uint64    `json:"id"`
	Asset       string    `json:"asset"`
	Creator     string    `json:"creator"`
	Amount      uint64    `json:"amount"`
	SettlerHint uint64    `json:"settler_hint"`
	Open        bool      `json:"open"`
	CreatedAt   time.Time `json:"created_at"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
}

type MintRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Amount uint64 `json:"amount"`
}

type MintResponse struct {
	Asset      string `json:"asset"`
	NewBalance uint64 `json:"new_balance"`
}

type CreateLiquidityRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Amount uint64 `json:"amount"`
}

type CreateLiquidityResponse struct {
	PositionID uint64 `json:"position_id"`
}

type Position struct {
	ID       uint64 `json:"id"`
	Asset    string `json:"asset"`
	Provider string `json:"provider"`
	Amount   uint64 `json:"amount"`
}

type GetPositionResponse struct {
	Position Position `json:"position"`
}

type BalanceResponse struct {
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

type TokensResponse struct {
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`
}

type MatchOrderRequest struct {
	OrderID  uint64 `json:"order_id" binding:"required"`
	Provider string `json:"provider" binding:"required"`
}

type Match struct {
	OrderID   uint64    `json:"order_id"`
	Provider  string    `json:"provider"`
	Seller    string    `json:"seller"`
	AssetIn   string    `json:"asset_in"`
	AssetOut  string    `json:"asset_out"`
	AmountIn  uint64    `json:"amount_in"`
	AmountOut uint64    `json:"amount_out"`
	Rate      uint64    `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

type MatchOrderResponse struct {
	Match Match `json:"match"`
}

type ListMatchesResponse struct {
	Matches []Match `json:"matches"`
}

type SetRateRequest struct {
	Direction string `json:"direction" binding:"required"`
	Rate      uint64 `json:"rate"`
}

type RateResponse struct {
	Direction string `json:"direction"`
	Rate      uint64 `json:"rate"`
}
