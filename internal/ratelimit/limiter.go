// Package ratelimit provides token-bucket rate limiters and per-backend call budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// BackendRates configures per-backend request rates (requests per second),
// keyed by adapter name.
type BackendRates map[string]float64

// DefaultBackendRates returns conservative per-node request rates. Regtest
// nodes tolerate far more, but fuzz campaigns run for hours and a saturated
// node skews execution timings.
func DefaultBackendRates() BackendRates {
	return BackendRates{
		"bitcoin_core":   50,
		"core_lightning": 25,
		"lnd":            25,
		"rust_lightning": 50,
	}
}

// BackendLimiter rate-limits fuzz-case dispatch per backend using token buckets.
type BackendLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewBackendLimiter creates a limiter with the given per-backend rates.
func NewBackendLimiter(rates BackendRates) *BackendLimiter {
	limiters := make(map[string]*rate.Limiter, len(rates))
	for backend, rps := range rates {
		limiters[backend] = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
	return &BackendLimiter{limiters: limiters}
}

// Wait blocks until a token is available for the named backend, or ctx is cancelled.
func (bl *BackendLimiter) Wait(ctx context.Context, backend string) error {
	bl.mu.RLock()
	limiter, ok := bl.limiters[backend]
	bl.mu.RUnlock()
	if !ok {
		return nil // unknown backend = no limit
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", backend, err)
	}
	return nil
}
