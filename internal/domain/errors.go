package domain

import "errors"

var (
	// ErrPriceUnavailable indicates a model lacks input or output pricing.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrInvalidMargin indicates a margin outside [0, 1).
	ErrInvalidMargin = errors.New("invalid margin")

	// ErrEmptyCandidatePool indicates a selection had no eligible models.
	ErrEmptyCandidatePool = errors.New("empty candidate pool")

	// ErrNotFound indicates a catalog lookup by an unknown key.
	ErrNotFound = errors.New("model not found")

	// ErrInvalidExchangeRate indicates a non-positive exchange rate.
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")

	// ErrInvalidUsage indicates negative token counts or volumes.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrInvalidBillingMethod indicates an unknown billing method.
	ErrInvalidBillingMethod = errors.New("invalid billing method")
)
