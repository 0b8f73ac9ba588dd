package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Position is one account's record: locked collateral per asset plus minted
// debt. A position with zero collateral and zero debt is indistinguishable
// from a never-used account.
type Position struct {
	Account    string                     `json:"account"`
	Collateral map[string]decimal.Decimal `json:"collateral"`
	Debt       decimal.Decimal            `json:"debt"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPosition creates a zero-initialized position for account.
func NewPosition(account string) *Position {
	now := time.Now()
	return &Position{
		Account:    account,
		Collateral: make(map[string]decimal.Decimal),
		Debt:       decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CollateralOf returns the locked quantity of asset, zero if none.
func (p *Position) CollateralOf(asset string) decimal.Decimal {
	if qty, exists := p.Collateral[asset]; exists {
		return qty
	}
	return decimal.Zero
}

// IsEmpty reports whether the position carries no collateral and no debt.
func (p *Position) IsEmpty() bool {
	if !p.Debt.IsZero() {
		return false
	}
	for _, qty := range p.Collateral {
		if !qty.IsZero() {
			return false
		}
	}
	return true
}

// clone deep-copies the position, including the collateral map.
func (p *Position) clone() *Position {
	collateral := make(map[string]decimal.Decimal, len(p.Collateral))
	for asset, qty := range p.Collateral {
		collateral[asset] = qty
	}
	return &Position{
		Account:    p.Account,
		Collateral: collateral,
		Debt:       p.Debt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ==========================================================================================

// Ledger owns every position plus the per-asset vault custody totals. Only the
// engine mutates it, through the methods below. Reads hand out deep copies so
// callers never alias ledger-owned maps.
type Ledger struct {
	positions map[string]*Position       // account -> position
	custody   map[string]decimal.Decimal // asset -> total quantity held in vault custody

	mu sync.RWMutex
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		positions: make(map[string]*Position),
		custody:   make(map[string]decimal.Decimal),
	}
}

// GetPosition returns a deep copy of the account's position. Accounts that
// were never touched read as a zero-initialized position.
func (l *Ledger) GetPosition(account string) *Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if position, exists := l.positions[account]; exists {
		return position.clone()
	}
	return NewPosition(account)
}

// TotalCustody returns the vault custody total for asset.
func (l *Ledger) TotalCustody(asset string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if qty, exists := l.custody[asset]; exists {
		return qty
	}
	return decimal.Zero
}

// Accounts returns the accounts that currently have a position record.
func (l *Ledger) Accounts() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts := make([]string, 0, len(l.positions))
	for account := range l.positions {
		accounts = append(accounts, account)
	}
	return accounts
}

// =====================================================
// Mutators
// =====================================================

// AddCollateral increments the account's locked quantity of asset, creating
// the position on first use.
func (l *Ledger) AddCollateral(account, asset string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	position := l.ensurePosition(account)
	position.Collateral[asset] = position.CollateralOf(asset).Add(amount)
	position.UpdatedAt = time.Now()
}

// SubCollateral decrements the account's locked quantity of asset. Underflow
// is a hard failure, never saturation.
func (l *Ledger) SubCollateral(account, asset string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	position := l.ensurePosition(account)
	balance := position.CollateralOf(asset)
	if balance.LessThan(amount) {
		return fmt.Errorf("collateral underflow for %s/%s: have %s, need %s",
			account, asset, balance.String(), amount.String())
	}
	position.Collateral[asset] = balance.Sub(amount)
	position.UpdatedAt = time.Now()

	return nil
}

// AddDebt increments the account's minted debt.
func (l *Ledger) AddDebt(account string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	position := l.ensurePosition(account)
	position.Debt = position.Debt.Add(amount)
	position.UpdatedAt = time.Now()
}

// SubDebt decrements the account's minted debt. Underflow is a hard failure.
func (l *Ledger) SubDebt(account string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	position := l.ensurePosition(account)
	if position.Debt.LessThan(amount) {
		return fmt.Errorf("debt underflow for %s: have %s, need %s",
			account, position.Debt.String(), amount.String())
	}
	position.Debt = position.Debt.Sub(amount)
	position.UpdatedAt = time.Now()

	return nil
}

// AddCustody increments the vault custody total for asset.
func (l *Ledger) AddCustody(asset string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.custody[asset] = l.custodyOf(asset).Add(amount)
}

// SubCustody decrements the vault custody total for asset. Underflow is a
// hard failure.
func (l *Ledger) SubCustody(asset string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.custodyOf(asset)
	if balance.LessThan(amount) {
		return fmt.Errorf("custody underflow for %s: have %s, need %s",
			asset, balance.String(), amount.String())
	}
	l.custody[asset] = balance.Sub(amount)

	return nil
}

// =====================================================
// Snapshot / Restore
// =====================================================

// Snapshot is a deep copy of selected positions and the full custody table,
// captured before a mutating operation so it can be rolled back wholesale.
type Snapshot struct {
	positions map[string]*Position // nil value -> position did not exist
	custody   map[string]decimal.Decimal
}

// Capture records the current state of the named accounts plus the custody
// table. Restore puts exactly that state back.
func (l *Ledger) Capture(accounts ...string) *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &Snapshot{
		positions: make(map[string]*Position, len(accounts)),
		custody:   make(map[string]decimal.Decimal, len(l.custody)),
	}
	for _, account := range accounts {
		if position, exists := l.positions[account]; exists {
			snap.positions[account] = position.clone()
		} else {
			snap.positions[account] = nil
		}
	}
	for asset, qty := range l.custody {
		snap.custody[asset] = qty
	}
	return snap
}

// Restore rewinds the captured accounts and the custody table to the snapshot
// state, discarding every change made since Capture.
func (l *Ledger) Restore(snap *Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for account, position := range snap.positions {
		if position == nil {
			delete(l.positions, account)
		} else {
			l.positions[account] = position.clone()
		}
	}
	l.custody = make(map[string]decimal.Decimal, len(snap.custody))
	for asset, qty := range snap.custody {
		l.custody[asset] = qty
	}
}

// ==========================================================================================
// private func
// ==========================================================================================

// ensurePosition returns the live position record, creating it on first use.
// Caller must hold the write lock.
func (l *Ledger) ensurePosition(account string) *Position {
	if position, exists := l.positions[account]; exists {
		return position
	}
	position := NewPosition(account)
	l.positions[account] = position
	return position
}

func (l *Ledger) custodyOf(asset string) decimal.Decimal {
	if qty, exists := l.custody[asset]; exists {
		return qty
	}
	return decimal.Zero
}
