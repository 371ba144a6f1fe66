package scheduler

import (
	"bytes"
	"testing"

	"docgate/internal/config"
	"docgate/internal/db"
	"docgate/internal/logger"
	"docgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_MonthlyReset(t *testing.T) {
	database, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	gdb := database.GetDB()
	require.NoError(t, gdb.Create(&model.APIKey{KeyHash: "h1", RequestsThisMonth: 100, RequestsCount: 250}).Error)

	log := logger.NewWithWriter(bytes.NewBuffer(nil), false)
	s := New(database, log)
	require.NoError(t, s.Start())
	defer s.Stop()

	// The cron expression itself fires at most monthly; run the job body
	// directly instead of waiting.
	require.NoError(t, database.ResetAllMonthlyUsage())

	var updated model.APIKey
	require.NoError(t, gdb.First(&updated, "key_hash = ?", "h1").Error)
	assert.Equal(t, 0, updated.RequestsThisMonth)
	assert.Equal(t, int64(250), updated.RequestsCount)
}

func TestScheduler_StartStop(t *testing.T) {
	database, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	s := New(database, logger.NewWithWriter(bytes.NewBuffer(nil), false))
	require.NoError(t, s.Start())
	s.Stop()
}
