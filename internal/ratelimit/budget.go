package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// CallBudget tracks per-backend method call counts within time windows.
// Campaigns use it to keep a misbehaving case generator from hammering one
// RPC method on one node.
type CallBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewCallBudget creates a budget limiter.
// maxPerWindow limits calls per (backend, method) within windowSize.
func NewCallBudget(maxPerWindow int, windowSize time.Duration) *CallBudget {
	return &CallBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(backend, method string) string {
	return backend + "|" + method
}

// Check returns an error if the backend has exceeded the budget for the method.
func (b *CallBudget) Check(backend, method string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(backend, method)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		return nil // no window or expired window
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("call budget exceeded: backend %s method %s (%d/%d in window)",
			backend, method, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record records a method call for the backend.
func (b *CallBudget) Record(backend, method string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(backend, method)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}
