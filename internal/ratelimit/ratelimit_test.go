package ratelimit

import (
	"testing"
	"time"

	"docgate/internal/config"
	"docgate/internal/db"
	"docgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (db.Service, *gorm.DB) {
	t.Helper()
	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	return service, service.GetDB()
}

func TestEvaluate_StaleWindowAdmitsRegardlessOfCount(t *testing.T) {
	now := time.Now()
	key := &model.APIKey{
		Plan:             "free",
		RateWindowStart:  now.Add(-2 * time.Minute).UTC().Format(time.RFC3339),
		RateRequestCount: 999,
	}

	d := Evaluate(now, key)
	assert.True(t, d.Admit)
	assert.True(t, d.Reset)
}

func TestEvaluate_MissingOrMalformedWindowAdmitsAndResets(t *testing.T) {
	now := time.Now()
	for _, start := range []string{"", "not-a-timestamp"} {
		key := &model.APIKey{Plan: "free", RateWindowStart: start, RateRequestCount: 999}
		d := Evaluate(now, key)
		assert.True(t, d.Admit, "window %q", start)
		assert.True(t, d.Reset, "window %q", start)
	}
}

func TestEvaluate_WithinWindowUnderLimitAdmits(t *testing.T) {
	now := time.Now()
	key := &model.APIKey{
		Plan:             "free",
		RateWindowStart:  now.Add(-10 * time.Second).UTC().Format(time.RFC3339),
		RateRequestCount: 5,
	}

	d := Evaluate(now, key)
	assert.True(t, d.Admit)
	assert.False(t, d.Reset)
}

func TestEvaluate_AtLimitRejectsWithLimit(t *testing.T) {
	now := time.Now()
	key := &model.APIKey{
		Plan:             "free",
		RateWindowStart:  now.Add(-10 * time.Second).UTC().Format(time.RFC3339),
		RateRequestCount: 10,
	}

	d := Evaluate(now, key)
	assert.False(t, d.Admit)
	assert.Equal(t, 10, d.Limit)
}

func TestEvaluate_PlanLimitsApply(t *testing.T) {
	now := time.Now()
	window := now.Add(-5 * time.Second).UTC().Format(time.RFC3339)

	pro := &model.APIKey{Plan: "pro", RateWindowStart: window, RateRequestCount: 59}
	assert.True(t, Evaluate(now, pro).Admit)

	pro.RateRequestCount = 60
	d := Evaluate(now, pro)
	assert.False(t, d.Admit)
	assert.Equal(t, 60, d.Limit)
}

// Scenario: a free key with count 9 inside a 10-second-old window is
// admitted and its stored count becomes 10; the next call in the same
// window is rejected with the limit attached.
func TestAdmit_IncrementThenReject(t *testing.T) {
	service, gdb := setupTestDB(t)
	now := time.Now()

	key := &model.APIKey{
		KeyHash:          "h1",
		Plan:             "free",
		Active:           true,
		RateWindowStart:  now.Add(-10 * time.Second).UTC().Format(time.RFC3339),
		RateRequestCount: 9,
	}
	gdb.Create(key)

	limiter := New(service)
	require.NoError(t, limiter.Admit(now, key))

	var stored model.APIKey
	gdb.First(&stored, key.ID)
	assert.Equal(t, 10, stored.RateRequestCount)

	err := limiter.Admit(now, &stored)
	require.Error(t, err)
	limitErr, ok := err.(*LimitExceededError)
	require.True(t, ok)
	assert.Equal(t, 10, limitErr.Limit)
	assert.Contains(t, limitErr.Error(), "10")

	// Rejection performs no mutation.
	gdb.First(&stored, key.ID)
	assert.Equal(t, 10, stored.RateRequestCount)
}

func TestAdmit_StaleWindowResetsStore(t *testing.T) {
	service, gdb := setupTestDB(t)
	now := time.Now()

	key := &model.APIKey{
		KeyHash:          "h1",
		Plan:             "free",
		Active:           true,
		RateWindowStart:  now.Add(-5 * time.Minute).UTC().Format(time.RFC3339),
		RateRequestCount: 10,
	}
	gdb.Create(key)

	limiter := New(service)
	require.NoError(t, limiter.Admit(now, key))

	var stored model.APIKey
	gdb.First(&stored, key.ID)
	assert.Equal(t, 1, stored.RateRequestCount)
	assert.Equal(t, now.UTC().Format(time.RFC3339), stored.RateWindowStart)

	// The in-memory record reflects the committed mutation too.
	assert.Equal(t, 1, key.RateRequestCount)
}
