package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"frizo/cdp_engine/internal/common"
	"frizo/cdp_engine/internal/ledger"
	"frizo/cdp_engine/internal/logger"
)

// Engine is the core orchestrator. It exclusively owns the position ledger and
// exposes the deposit / mint / burn / redeem / liquidate operations, enforcing
// the overcollateralization invariant after every mutation.
//
// Execution model: each mutating operation runs as a single atomic unit.
// Ledger mutations are staged first and verified against the invariant, then
// external collaborators are invoked; any failure restores the ledger from a
// snapshot taken at entry. No partial ledger state is ever visible afterward.
type Engine struct {
	registry *AssetRegistry
	ledger   *ledger.Ledger
	valuer   *Valuer
	health   *HealthCalculator
	vault    CollateralVault
	debtTok  DebtToken
	params   Params
	log      *logger.Logger

	// single-entry guard for mutating operations. A collaborator callback
	// re-entering the engine fails fast instead of deadlocking.
	busy atomic.Bool
}

// NewEngine wires the engine to its immutable asset registry and external
// collaborators. Params are validated once here and never change.
func NewEngine(registry *AssetRegistry, vault CollateralVault, debtToken DebtToken, params Params, log *logger.Logger) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine needs an asset registry")
	}
	if vault == nil {
		return nil, fmt.Errorf("engine needs a collateral vault")
	}
	if debtToken == nil {
		return nil, fmt.Errorf("engine needs a debt token")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}

	valuer := NewValuer(registry, params.MaxPriceAge)
	return &Engine{
		registry: registry,
		ledger:   ledger.NewLedger(),
		valuer:   valuer,
		health:   NewHealthCalculator(valuer, params),
		vault:    vault,
		debtTok:  debtToken,
		params:   params,
		log:      log,
	}, nil
}

// =====================================================
// Mutating operations
// =====================================================

// DepositCollateral locks amount units of a registered asset for account and
// pulls the same amount into vault custody.
func (e *Engine) DepositCollateral(account, asset string, amount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	return e.depositCollateral(account, asset, amount)
}

// MintDebt mints amount debt against account's collateral. Fails with
// ErrHealthFactorBroken if the resulting ratio would drop below the minimum.
func (e *Engine) MintDebt(account string, amount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	return e.mintDebt(account, amount)
}

// BurnDebt repays amount of account's debt, destroying the tokens sourced
// from the account.
func (e *Engine) BurnDebt(account string, amount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	return e.burnDebt(account, amount)
}

// RedeemCollateral releases amount units of asset back to account, provided
// the position stays healthy.
func (e *Engine) RedeemCollateral(account, asset string, amount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	return e.redeemCollateral(account, asset, amount)
}

// DepositAndMint composes deposit then mint as one atomic unit: the invariant
// is verified over the combined staged state before any external call, so a
// failing mint never strands a completed deposit.
func (e *Engine) DepositAndMint(account, asset string, collateralAmount, debtAmount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if collateralAmount.LessThanOrEqual(decimal.Zero) || debtAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: deposit %s, mint %s", ErrInvalidAmount, collateralAmount.String(), debtAmount.String())
	}
	if !e.registry.IsRegistered(asset) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}

	snap := e.ledger.Capture(account)

	e.ledger.AddCollateral(account, asset, collateralAmount)
	e.ledger.AddCustody(asset, collateralAmount)
	e.ledger.AddDebt(account, debtAmount)

	if err := e.requireHealthy(account); err != nil {
		e.ledger.Restore(snap)
		return err
	}
	if err := e.vault.TransferIn(account, asset, collateralAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.debtTok.Issue(account, debtAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	e.log.Debug("collateral deposited and debt minted",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"asset", asset,
		"collateral", collateralAmount.String(),
		"debt", debtAmount.String(),
	)

	return nil
}

// RedeemForBurn composes burn then redeem as one atomic unit, mirroring
// DepositAndMint: staged state is verified before collaborators run.
func (e *Engine) RedeemForBurn(account, asset string, collateralAmount, debtAmount decimal.Decimal) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if collateralAmount.LessThanOrEqual(decimal.Zero) || debtAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: redeem %s, burn %s", ErrInvalidAmount, collateralAmount.String(), debtAmount.String())
	}

	position := e.ledger.GetPosition(account)
	if debtAmount.GreaterThan(position.Debt) {
		return fmt.Errorf("%w: burning %s against %s outstanding",
			ErrInsufficientDebt, debtAmount.String(), position.Debt.String())
	}
	if position.CollateralOf(asset).LessThan(collateralAmount) {
		return fmt.Errorf("%w: redeeming %s %s against %s held",
			ErrInsufficientCollateral, collateralAmount.String(), asset, position.CollateralOf(asset).String())
	}

	snap := e.ledger.Capture(account)

	if err := e.ledger.SubDebt(account, debtAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientDebt, err)
	}
	if err := e.ledger.SubCollateral(account, asset, collateralAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}
	if err := e.ledger.SubCustody(asset, collateralAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}

	if err := e.requireHealthy(account); err != nil {
		e.ledger.Restore(snap)
		return err
	}
	if err := e.debtTok.Destroy(account, debtAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.vault.TransferOut(account, asset, collateralAmount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	e.log.Debug("debt burned and collateral redeemed",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"asset", asset,
		"collateral", collateralAmount.String(),
		"debt", debtAmount.String(),
	)

	return nil
}

// Liquidate lets the caller close debtToCover of an unhealthy target position
// in exchange for the equivalent collateral plus the liquidation bonus. The
// seized collateral quantity is returned. Partial liquidation is allowed up
// to the target's outstanding debt.
func (e *Engine) Liquidate(liquidator, target, asset string, debtToCover decimal.Decimal) (decimal.Decimal, error) {
	if err := e.begin(); err != nil {
		return decimal.Zero, err
	}
	defer e.end()

	if debtToCover.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: debt to cover %s", ErrInvalidAmount, debtToCover.String())
	}
	if !e.registry.IsRegistered(asset) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}

	targetPos := e.ledger.GetPosition(target)
	startFactor, err := e.health.HealthFactor(targetPos)
	if err != nil {
		return decimal.Zero, err
	}
	if startFactor.GreaterThanOrEqual(e.params.MinHealthFactor) {
		return decimal.Zero, fmt.Errorf("%w: %s at %s", ErrHealthFactorOk, target, startFactor.String())
	}
	if debtToCover.GreaterThan(targetPos.Debt) {
		return decimal.Zero, fmt.Errorf("%w: covering %s against %s outstanding",
			ErrInsufficientDebt, debtToCover.String(), targetPos.Debt.String())
	}

	// Seizure = covered debt converted to collateral units, plus the bonus
	// incentive on top.
	baseQuantity, err := e.valuer.QuantityFromValue(asset, debtToCover)
	if err != nil {
		return decimal.Zero, err
	}
	seized := baseQuantity.Mul(decimal.NewFromInt(1).Add(e.params.LiquidationBonus))
	if targetPos.CollateralOf(asset).LessThan(seized) {
		return decimal.Zero, fmt.Errorf("%w: seizing %s %s against %s held",
			ErrInsufficientCollateral, seized.String(), asset, targetPos.CollateralOf(asset).String())
	}

	snap := e.ledger.Capture(target, liquidator)

	if err := e.ledger.SubCollateral(target, asset, seized); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}
	if err := e.ledger.SubCustody(asset, seized); err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}
	if err := e.ledger.SubDebt(target, debtToCover); err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInsufficientDebt, err)
	}

	// The action must strictly improve the target, and must not leave the
	// liquidator's own position unsafe. Both verified before any external
	// value moves.
	endFactor, err := e.health.HealthFactor(e.ledger.GetPosition(target))
	if err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, err
	}
	if !endFactor.GreaterThan(startFactor) {
		e.ledger.Restore(snap)
		return decimal.Zero, fmt.Errorf("%w: %s -> %s", ErrHealthFactorNotImproved, startFactor.String(), endFactor.String())
	}
	if err := e.requireHealthy(liquidator); err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, err
	}

	// Liquidator supplies the debt tokens, then receives the seized
	// collateral from vault custody.
	if err := e.debtTok.Destroy(liquidator, debtToCover); err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.vault.TransferOut(liquidator, asset, seized); err != nil {
		e.ledger.Restore(snap)
		return decimal.Zero, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	e.log.Info("liquidation executed",
		"op_id", common.GenerateOperationID(),
		"liquidator", liquidator,
		"target", target,
		"asset", asset,
		"debt_covered", debtToCover.String(),
		"collateral_seized", seized.String(),
		"health_factor", fmt.Sprintf("%s -> %s", startFactor.String(), endFactor.String()),
	)

	return seized, nil
}

// =====================================================
// Read-only queries
// =====================================================

// AccountInformation is a read-only view of one position.
type AccountInformation struct {
	Account         string                     `json:"account"`
	Debt            decimal.Decimal            `json:"debt"`
	CollateralValue decimal.Decimal            `json:"collateral_value"`
	Collateral      map[string]decimal.Decimal `json:"collateral"`
	HealthFactor    decimal.Decimal            `json:"health_factor"`
}

// GetAccountInformation returns the account's debt, per-asset collateral
// balances, total collateral value and health factor. It never mutates state.
func (e *Engine) GetAccountInformation(account string) (AccountInformation, error) {
	position := e.ledger.GetPosition(account)

	collateralValue, err := e.valuer.TotalCollateralValue(position)
	if err != nil {
		return AccountInformation{}, err
	}
	factor, err := e.health.HealthFactor(position)
	if err != nil {
		return AccountInformation{}, err
	}

	return AccountInformation{
		Account:         account,
		Debt:            position.Debt,
		CollateralValue: collateralValue,
		Collateral:      position.Collateral,
		HealthFactor:    factor,
	}, nil
}

// GetHealthFactor returns the account's current safety ratio.
func (e *Engine) GetHealthFactor(account string) (decimal.Decimal, error) {
	return e.health.HealthFactor(e.ledger.GetPosition(account))
}

// GetCollateralBalance returns the account's locked quantity of asset.
func (e *Engine) GetCollateralBalance(account, asset string) decimal.Decimal {
	return e.ledger.GetPosition(account).CollateralOf(asset)
}

// GetTotalCustody returns the vault custody total for asset.
func (e *Engine) GetTotalCustody(asset string) decimal.Decimal {
	return e.ledger.TotalCustody(asset)
}

// GetCollateralValue converts a quantity of asset to USD value.
func (e *Engine) GetCollateralValue(asset string, quantity decimal.Decimal) (decimal.Decimal, error) {
	return e.valuer.ValueOf(asset, quantity)
}

// GetCollateralQuantity converts a USD value to a quantity of asset.
func (e *Engine) GetCollateralQuantity(asset string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	return e.valuer.QuantityFromValue(asset, usdValue)
}

// RegisteredAssets returns the immutable collateral asset list.
func (e *Engine) RegisteredAssets() []string {
	return e.registry.Assets()
}

// Params returns the engine's risk parameters.
func (e *Engine) Params() Params {
	return e.params
}

// ==========================================================================================
// private func
// ==========================================================================================

func (e *Engine) depositCollateral(account, asset string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: deposit %s", ErrInvalidAmount, amount.String())
	}
	if !e.registry.IsRegistered(asset) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}

	snap := e.ledger.Capture(account)

	// Ledger first, then the external pull. A reentrant observer never sees
	// stale pre-deposit balances.
	e.ledger.AddCollateral(account, asset, amount)
	e.ledger.AddCustody(asset, amount)

	if err := e.vault.TransferIn(account, asset, amount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	e.log.Debug("collateral deposited",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"asset", asset,
		"amount", amount.String(),
	)

	return nil
}

func (e *Engine) mintDebt(account string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: mint %s", ErrInvalidAmount, amount.String())
	}

	snap := e.ledger.Capture(account)

	e.ledger.AddDebt(account, amount)

	if err := e.requireHealthy(account); err != nil {
		e.ledger.Restore(snap)
		return err
	}
	if err := e.debtTok.Issue(account, amount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	e.log.Debug("debt minted",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"amount", amount.String(),
	)

	return nil
}

func (e *Engine) burnDebt(account string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: burn %s", ErrInvalidAmount, amount.String())
	}

	position := e.ledger.GetPosition(account)
	if amount.GreaterThan(position.Debt) {
		return fmt.Errorf("%w: burning %s against %s outstanding",
			ErrInsufficientDebt, amount.String(), position.Debt.String())
	}

	snap := e.ledger.Capture(account)

	if err := e.ledger.SubDebt(account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientDebt, err)
	}

	// Debt only decreased, so this should always pass. Evaluated anyway.
	if err := e.requireHealthy(account); err != nil {
		e.ledger.Restore(snap)
		return err
	}
	if err := e.debtTok.Destroy(account, amount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}

	e.log.Debug("debt burned",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"amount", amount.String(),
	)

	return nil
}

func (e *Engine) redeemCollateral(account, asset string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: redeem %s", ErrInvalidAmount, amount.String())
	}

	position := e.ledger.GetPosition(account)
	if position.CollateralOf(asset).LessThan(amount) {
		return fmt.Errorf("%w: redeeming %s %s against %s held",
			ErrInsufficientCollateral, amount.String(), asset, position.CollateralOf(asset).String())
	}

	snap := e.ledger.Capture(account)

	if err := e.ledger.SubCollateral(account, asset, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}
	if err := e.ledger.SubCustody(asset, amount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrInsufficientCollateral, err)
	}

	if err := e.requireHealthy(account); err != nil {
		e.ledger.Restore(snap)
		return err
	}
	if err := e.vault.TransferOut(account, asset, amount); err != nil {
		e.ledger.Restore(snap)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	e.log.Debug("collateral redeemed",
		"op_id", common.GenerateOperationID(),
		"account", account,
		"asset", asset,
		"amount", amount.String(),
	)

	return nil
}

// requireHealthy recomputes the account's health factor from live ledger
// state and fails with ErrHealthFactorBroken below the minimum.
func (e *Engine) requireHealthy(account string) error {
	factor, err := e.health.HealthFactor(e.ledger.GetPosition(account))
	if err != nil {
		return err
	}
	if factor.LessThan(e.params.MinHealthFactor) {
		return fmt.Errorf("%w: %s at %s", ErrHealthFactorBroken, account, factor.String())
	}
	return nil
}

// begin acquires the single-entry guard for a mutating operation.
func (e *Engine) begin() error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// end releases the single-entry guard.
func (e *Engine) end() {
	e.busy.Store(false)
}
