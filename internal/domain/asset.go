package domain

import "fmt"

// Asset identifies one of the two fungible assets the ledger tracks.
// The set is closed for the life of a ledger instance; no other asset
// can acquire a balance or a pool entry.
type Asset string

const (
	USDC Asset = "USDC"
	WETH Asset = "WETH"
)

// Identity is a caller identity supplied by the hosting layer.
type Identity string

// Assets returns the two recognized assets in a fixed order.
func Assets() (Asset, Asset) { return USDC, WETH }

// Known reports whether the asset belongs to the closed set.
func (a Asset) Known() bool { return a == USDC || a == WETH }

// Counter returns the other recognized asset.
func (a Asset) Counter() Asset {
	if a == USDC {
		return WETH
	}
	return USDC
}

// ParseAsset validates an asset identifier coming from the outside.
func ParseAsset(s string) (Asset, error) {
	a := Asset(s)
	if !a.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAsset, s)
	}
	return a, nil
}

// RateDirection names a directional exchange rate. The rate means
// "units of the target asset received per unit of the source asset".
type RateDirection string

const (
	// USDCPerWETH applies to orders selling WETH.
	USDCPerWETH RateDirection = "USDC_PER_WETH"
	// WETHPerUSDC applies to orders selling USDC.
	WETHPerUSDC RateDirection = "WETH_PER_USDC"
)

func (d RateDirection) Known() bool { return d == USDCPerWETH || d == WETHPerUSDC }

// ParseDirection validates a rate direction coming from the outside.
func ParseDirection(s string) (RateDirection, error) {
	d := RateDirection(s)
	if !d.Known() {
		return "", fmt.Errorf("unknown rate direction %q", s)
	}
	return d, nil
}

// DirectionFor returns the oracle direction that prices an order
// selling the given input asset.
func DirectionFor(in Asset) RateDirection {
	if in == WETH {
		return USDCPerWETH
	}
	return WETHPerUSDC
}
