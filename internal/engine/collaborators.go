package engine

import "github.com/shopspring/decimal"

// CollateralVault moves underlying collateral assets between callers and the
// vault's custody. A non-nil error means the transfer did not happen; the
// engine aborts and rolls back the whole operation.
type CollateralVault interface {
	// TransferIn moves amount units of asset from the account into vault
	// custody.
	TransferIn(from, asset string, amount decimal.Decimal) error

	// TransferOut moves amount units of asset from vault custody to the
	// account.
	TransferOut(to, asset string, amount decimal.Decimal) error
}

// DebtToken is the synthetic token's supply bookkeeping. Issue and Destroy
// report failure through a non-nil error; the engine treats any failure as a
// hard abort with rollback.
type DebtToken interface {
	// Issue mints amount debt tokens to the account.
	Issue(to string, amount decimal.Decimal) error

	// Destroy burns amount debt tokens sourced from the account.
	Destroy(from string, amount decimal.Decimal) error
}
