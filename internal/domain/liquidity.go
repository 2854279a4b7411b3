package domain

// LiquidityPosition is a provider's reserve of one asset, available to
// be paid out to takers during settlement. Positions are keyed by
// (provider, asset); the id comes from a single sequence shared across
// all pairs and is never used for lookup.
type LiquidityPosition struct {
	ID       uint64   `json:"id"`
	Asset    Asset    `json:"asset"`
	Provider Identity `json:"provider"`
	Amount   uint64   `json:"amount"`
}

// BalanceEntry is one (owner, asset) row of the account ledger, used
// when rehydrating state from a repository.
type BalanceEntry struct {
	Owner  Identity `json:"owner"`
	Asset  Asset    `json:"asset"`
	Amount uint64   `json:"amount"`
}
