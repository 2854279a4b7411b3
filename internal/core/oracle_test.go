package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"otcledger/internal/core"
	"otcledger/internal/domain"
)

func TestOracleUnsetReadsZero(t *testing.T) {
	o := core.NewPriceOracle()
	assert.Equal(t, uint64(0), o.Rate(domain.USDCPerWETH))
}

func TestOracleSetRateOverwrites(t *testing.T) {
	o := core.NewPriceOracle()
	o.SetRate(domain.USDCPerWETH, 200)
	assert.Equal(t, uint64(200), o.Rate(domain.USDCPerWETH))

	// Directions are independent.
	assert.Equal(t, uint64(0), o.Rate(domain.WETHPerUSDC))

	o.SetRate(domain.USDCPerWETH, 250)
	assert.Equal(t, uint64(250), o.Rate(domain.USDCPerWETH))

	// Writing zero is allowed and marks the direction unconfigured.
	o.SetRate(domain.USDCPerWETH, 0)
	assert.Equal(t, uint64(0), o.Rate(domain.USDCPerWETH))
}
