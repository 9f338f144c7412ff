package domain

import (
	"fmt"
	"sync"
)

// ExchangeRate is target-currency units per reference-currency unit.
type ExchangeRate float64

// Validate rejects non-positive rates.
func (r ExchangeRate) Validate() error {
	if r <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidExchangeRate, float64(r))
	}
	return nil
}

// Convert converts a reference-currency amount.
func (r ExchangeRate) Convert(amount float64) float64 {
	return amount * float64(r)
}

// RateHolder keeps the process-wide exchange rate. One caller updates it
// at a time; readers always see a complete value.
type RateHolder struct {
	mu       sync.RWMutex
	current  ExchangeRate
	fallback ExchangeRate
}

// NewRateHolder creates a holder starting at the default rate.
func NewRateHolder(defaultRate ExchangeRate) (*RateHolder, error) {
	if err := defaultRate.Validate(); err != nil {
		return nil, err
	}
	return &RateHolder{
		mu:       sync.RWMutex{},
		current:  defaultRate,
		fallback: defaultRate,
	}, nil
}

// Get returns the current rate.
func (h *RateHolder) Get() ExchangeRate {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set replaces the current rate.
func (h *RateHolder) Set(rate ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = rate
	return nil
}

// Reset restores the default rate.
func (h *RateHolder) Reset() ExchangeRate {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = h.fallback
	return h.current
}

// Default returns the rate the holder was created with.
func (h *RateHolder) Default() ExchangeRate {
	return h.fallback
}
