package domain

import "errors"

// Failure taxonomy. Every operation aborts on the first precondition
// that fails and reports which one it was; there is no local recovery.
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnknownAsset          = errors.New("unknown asset")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrOrderNotFound         = errors.New("order not found")
	ErrPositionNotFound      = errors.New("liquidity position not found")
	ErrOrderClosed           = errors.New("order not open")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrOracleUnset           = errors.New("oracle rate not set")
)
