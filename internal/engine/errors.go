package engine

import "errors"

// Failure taxonomy. Input validation errors are rejected before any state
// mutation; invariant and collaborator failures are detected after tentative
// mutation and cause a full ledger rollback. Callers match with errors.Is.
var (
	// input validation
	ErrInvalidAmount    = errors.New("cdp engine: amount must be positive")
	ErrUnsupportedAsset = errors.New("cdp engine: asset not registered as collateral")

	// balance checks
	ErrInsufficientCollateral = errors.New("cdp engine: insufficient collateral balance")
	ErrInsufficientDebt       = errors.New("cdp engine: amount exceeds outstanding debt")

	// invariant violations
	ErrHealthFactorBroken      = errors.New("cdp engine: health factor below minimum")
	ErrHealthFactorOk          = errors.New("cdp engine: target position is healthy, liquidation refused")
	ErrHealthFactorNotImproved = errors.New("cdp engine: liquidation did not improve target health factor")

	// collaborator failures
	ErrPriceUnavailable = errors.New("cdp engine: price unavailable")
	ErrStalePrice       = errors.New("cdp engine: price is older than the configured maximum age")
	ErrTransferFailed   = errors.New("cdp engine: collateral transfer failed")
	ErrIssuanceFailed   = errors.New("cdp engine: debt token issuance failed")
	ErrBurnFailed       = errors.New("cdp engine: debt token destruction failed")

	// execution model
	ErrReentrantCall = errors.New("cdp engine: mutating operation already in flight")
)
