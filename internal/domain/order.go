package domain

import "time"

// Order is a standing intent to sell a fixed amount of one asset.
// Creator and SettlerHint are immutable after creation; Open flips to
// false exactly once, when the order is matched. Orders are never
// deleted.
type Order struct {
	ID          uint64    `json:"id"`
	Asset       Asset     `json:"asset"`
	Creator     Identity  `json:"creator"`
	Amount      uint64    `json:"amount"`
	SettlerHint uint64    `json:"settler_hint"`
	Open        bool      `json:"open"`
	CreatedAt   time.Time `json:"created_at"`
}
