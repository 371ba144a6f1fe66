// Package quota enforces the monthly request limit. It is a pure check
// over an already-fetched key record; the monthly counter itself is
// advanced by the pipeline after a successful extraction and reset by the
// scheduler.
package quota

import (
	"fmt"

	"docgate/internal/model"
	"docgate/internal/plan"
)

// ExceededError reports a rejected request together with the effective
// monthly limit.
type ExceededError struct {
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("monthly quota reached, limit: %d", e.Limit)
}

// EffectiveLimit returns the monthly cap actually enforced for a key: the
// per-key override when set, otherwise the plan's monthly limit.
func EffectiveLimit(key *model.APIKey) int {
	if key.CustomLimit != nil {
		return *key.CustomLimit
	}
	return plan.MonthlyLimitFor(key.Plan)
}

// Check returns a *ExceededError when the key has used up its effective
// monthly limit.
func Check(key *model.APIKey) error {
	limit := EffectiveLimit(key)
	if key.RequestsThisMonth >= limit {
		return &ExceededError{Limit: limit}
	}
	return nil
}
