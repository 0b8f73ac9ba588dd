package bank

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Bank is an in-memory implementation of the engine's two external
// collaborators: the collateral vault (underlying asset custody) and the
// synthetic debt token (issue/destroy bookkeeping). It stands in for the real
// settlement layer in the entrypoint and in integration-style tests.
type Bank struct {
	balances map[string]map[string]decimal.Decimal // account -> asset -> wallet balance
	vault    map[string]decimal.Decimal            // asset -> vault custody
	debt     map[string]decimal.Decimal            // account -> debt token balance
	supply   decimal.Decimal                       // debt token total supply

	mu sync.RWMutex
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]map[string]decimal.Decimal),
		vault:    make(map[string]decimal.Decimal),
		debt:     make(map[string]decimal.Decimal),
		supply:   decimal.Zero,
	}
}

// Credit funds an account's wallet with amount units of asset.
func (b *Bank) Credit(account, asset string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureWallet(account)[asset] = b.walletOf(account, asset).Add(amount)
}

// BalanceOf returns the account's wallet balance of asset.
func (b *Bank) BalanceOf(account, asset string) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.walletOf(account, asset)
}

// VaultBalance returns the vault's custody of asset.
func (b *Bank) VaultBalance(asset string) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if qty, exists := b.vault[asset]; exists {
		return qty
	}
	return decimal.Zero
}

// DebtBalanceOf returns the account's debt token balance.
func (b *Bank) DebtBalanceOf(account string) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if qty, exists := b.debt[account]; exists {
		return qty
	}
	return decimal.Zero
}

// TotalSupply returns the debt token's outstanding supply.
func (b *Bank) TotalSupply() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.supply
}

// =====================================================
// CollateralVault implementation
// =====================================================

// TransferIn moves amount of asset from the account's wallet into vault
// custody.
func (b *Bank) TransferIn(from, asset string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.walletOf(from, asset)
	if balance.LessThan(amount) {
		return fmt.Errorf("insufficient %s balance for %s: have %s, need %s",
			asset, from, balance.String(), amount.String())
	}
	b.ensureWallet(from)[asset] = balance.Sub(amount)
	b.vault[asset] = b.vaultOf(asset).Add(amount)

	return nil
}

// TransferOut moves amount of asset from vault custody to the account's
// wallet.
func (b *Bank) TransferOut(to, asset string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := b.vaultOf(asset)
	if held.LessThan(amount) {
		return fmt.Errorf("insufficient vault custody of %s: have %s, need %s",
			asset, held.String(), amount.String())
	}
	b.vault[asset] = held.Sub(amount)
	b.ensureWallet(to)[asset] = b.walletOf(to, asset).Add(amount)

	return nil
}

// =====================================================
// DebtToken implementation
// =====================================================

// Issue mints amount debt tokens to the account.
func (b *Bank) Issue(to string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.debt[to] = b.debtOf(to).Add(amount)
	b.supply = b.supply.Add(amount)

	return nil
}

// Destroy burns amount debt tokens sourced from the account.
func (b *Bank) Destroy(from string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.debtOf(from)
	if balance.LessThan(amount) {
		return fmt.Errorf("insufficient debt token balance for %s: have %s, need %s",
			from, balance.String(), amount.String())
	}
	b.debt[from] = balance.Sub(amount)
	b.supply = b.supply.Sub(amount)

	return nil
}

// ==========================================================================================
// private func
// ==========================================================================================

func (b *Bank) ensureWallet(account string) map[string]decimal.Decimal {
	if wallet, exists := b.balances[account]; exists {
		return wallet
	}
	wallet := make(map[string]decimal.Decimal)
	b.balances[account] = wallet
	return wallet
}

func (b *Bank) walletOf(account, asset string) decimal.Decimal {
	if wallet, exists := b.balances[account]; exists {
		if qty, exists := wallet[asset]; exists {
			return qty
		}
	}
	return decimal.Zero
}

func (b *Bank) vaultOf(asset string) decimal.Decimal {
	if qty, exists := b.vault[asset]; exists {
		return qty
	}
	return decimal.Zero
}

func (b *Bank) debtOf(account string) decimal.Decimal {
	if qty, exists := b.debt[account]; exists {
		return qty
	}
	return decimal.Zero
}
