// Package ratelimit implements the per-key sliding-window admission check.
// The decision is a pure function over the key record; applying it mutates
// the store through atomic primitives so concurrent requests against the
// same key stay within the per-minute ceiling.
package ratelimit

import (
	"fmt"
	"time"

	"docgate/internal/db"
	"docgate/internal/model"
	"docgate/internal/plan"
)

// Window is the rolling admission interval.
const Window = 60 * time.Second

// LimitExceededError reports a rejected request together with the plan's
// per-minute limit, for client backoff guidance.
type LimitExceededError struct {
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, limit: %d/min", e.Limit)
}

// Decision is the outcome of evaluating a key record against the window.
type Decision struct {
	// Admit is true when the request may proceed.
	Admit bool
	// Reset is true when the window must be replaced with (now, 1).
	Reset bool
	// Limit is the plan's per-minute limit, populated on rejection.
	Limit int
}

// Evaluate decides admission for a key record at the given time. An absent,
// unparseable, or stale window start always admits and forces a reset; the
// prior count is irrelevant in that case.
func Evaluate(now time.Time, key *model.APIKey) Decision {
	start, err := time.Parse(time.RFC3339, key.RateWindowStart)
	if err != nil || now.Sub(start) > Window {
		return Decision{Admit: true, Reset: true}
	}

	limit := plan.RateLimitFor(key.Plan)
	if key.RateRequestCount >= limit {
		return Decision{Limit: limit}
	}
	return Decision{Admit: true}
}

// Limiter applies admission decisions to the key store.
type Limiter struct {
	db db.Service
}

// New creates a Limiter backed by the given store.
func New(database db.Service) *Limiter {
	return &Limiter{db: database}
}

// Admit evaluates the key and commits the resulting mutation before
// returning. On rejection it returns a *LimitExceededError and performs no
// mutation. Two concurrent callers may both observe a stale window and both
// reset it; the reset is idempotent, so the accepted error bound is a
// single extra admitted request.
func (l *Limiter) Admit(now time.Time, key *model.APIKey) error {
	decision := Evaluate(now, key)
	if !decision.Admit {
		return &LimitExceededError{Limit: decision.Limit}
	}

	if decision.Reset {
		windowStart := now.UTC().Format(time.RFC3339)
		if err := l.db.ResetRateWindow(key.ID, windowStart); err != nil {
			return fmt.Errorf("failed to reset rate window: %w", err)
		}
		key.RateWindowStart = windowStart
		key.RateRequestCount = 1
		return nil
	}

	if err := l.db.IncrementRateCount(key.ID); err != nil {
		return fmt.Errorf("failed to increment rate count: %w", err)
	}
	key.RateRequestCount++
	return nil
}
