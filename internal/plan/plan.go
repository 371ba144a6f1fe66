// Package plan defines the pricing tiers and their request limits. These
// are immutable process-wide tables, not runtime state.
package plan

const (
	Free       = "free"
	Pro        = "pro"
	Enterprise = "enterprise"
)

// DefaultMonthlyLimit applies to keys whose plan is unknown.
const DefaultMonthlyLimit = 50

// DefaultRateLimit applies to keys whose plan is unknown.
const DefaultRateLimit = 10

// Plan describes one pricing tier.
type Plan struct {
	// RateLimit is the number of requests admitted per 60-second window.
	RateLimit int
	// MonthlyLimit is the number of requests admitted per calendar month.
	MonthlyLimit int
	// PriceCents is the monthly subscription price in USD cents.
	PriceCents int
}

var plans = map[string]Plan{
	Free:       {RateLimit: 10, MonthlyLimit: 50, PriceCents: 0},
	Pro:        {RateLimit: 60, MonthlyLimit: 5000, PriceCents: 2900},
	Enterprise: {RateLimit: 600, MonthlyLimit: 100000, PriceCents: 29900},
}

// Lookup returns the plan for a tier name. Unknown names fall back to a
// plan carrying the default limits.
func Lookup(name string) Plan {
	if p, ok := plans[name]; ok {
		return p
	}
	return Plan{RateLimit: DefaultRateLimit, MonthlyLimit: DefaultMonthlyLimit}
}

// Valid reports whether the tier name is a known plan.
func Valid(name string) bool {
	_, ok := plans[name]
	return ok
}

// RateLimitFor returns the per-minute request limit for a plan name.
func RateLimitFor(name string) int {
	return Lookup(name).RateLimit
}

// MonthlyLimitFor returns the monthly request limit for a plan name.
func MonthlyLimitFor(name string) int {
	return Lookup(name).MonthlyLimit
}
