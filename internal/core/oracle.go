package core

import "otcledger/internal/domain"

// PriceOracle holds the two operator-settable directional rates. A
// rate of 0 means "not configured" and blocks settlement in that
// direction. Authorization is enforced by the engine, not here.
type PriceOracle struct {
	rates map[domain.RateDirection]uint64
}

func NewPriceOracle() *PriceOracle {
	return &PriceOracle{rates: make(map[domain.RateDirection]uint64)}
}

// SetRate overwrites the rate unconditionally, including to zero.
func (o *PriceOracle) SetRate(dir domain.RateDirection, rate uint64) {
	o.rates[dir] = rate
}

// Rate returns the configured rate, 0 if unset.
func (o *PriceOracle) Rate(dir domain.RateDirection) uint64 {
	return o.rates[dir]
}
