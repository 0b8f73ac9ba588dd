package oracle

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PriceData is a single price observation for one asset, quoted in the
// unit-of-account (USD).
type PriceData struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Source provides current prices for collateral assets. Implementations must
// return an error when no usable price exists for the asset; freshness is
// judged by the caller.
type Source interface {
	GetPrice(asset string) (PriceData, error)
}

// ==========================================================================================

// StaticSource is an in-memory Source backed by a price map. Used by the
// entrypoint bootstrap and by tests.
type StaticSource struct {
	prices map[string]PriceData
	mu     sync.RWMutex
}

// NewStaticSource creates an empty static price source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		prices: make(map[string]PriceData),
	}
}

// SetPrice records a price for asset stamped with the current time.
func (s *StaticSource) SetPrice(asset string, price decimal.Decimal) {
	s.SetPriceAt(asset, price, time.Now())
}

// SetPriceAt records a price for asset with an explicit observation time.
func (s *StaticSource) SetPriceAt(asset string, price decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[asset] = PriceData{Price: price, UpdatedAt: at}
}

// Remove drops the price for asset, making it unavailable.
func (s *StaticSource) Remove(asset string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.prices, asset)
}

// GetPrice implements Source.
func (s *StaticSource) GetPrice(asset string) (PriceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.prices[asset]
	if !exists {
		return PriceData{}, fmt.Errorf("no price for asset %s", asset)
	}
	return data, nil
}
