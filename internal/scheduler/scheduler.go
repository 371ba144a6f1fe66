package scheduler

import (
	"log/slog"

	"docgate/internal/db"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the monthly usage reset. The extraction pipeline never
// resets counters itself; it only ever increments them.
type Scheduler struct {
	db     db.Service
	logger *slog.Logger
	c      *cron.Cron
}

func New(database db.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     database,
		logger: logger.With("component", "scheduler"),
		c:      cron.New(),
	}
}

// Start registers the reset job for midnight on the first of each month.
func (s *Scheduler) Start() error {
	_, err := s.c.AddFunc("0 0 1 * *", func() {
		s.logger.Info("Running monthly job: resetting per-key usage counters.")
		if err := s.db.ResetAllMonthlyUsage(); err != nil {
			s.logger.Error("Failed to reset monthly usage", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.c.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
