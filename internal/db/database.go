package db

import (
	"fmt"

	"docgate/internal/config"
	"docgate/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Service is the key-store interface consumed by the extraction pipeline
// and the admin handlers. All cross-request coordination (rate windows,
// usage counters) goes through its atomic update methods; the pipeline
// never relies on in-process locking because requests for the same key may
// be served by independent processes.
type Service interface {
	// FindActiveKeyByHash returns the active key record matching the
	// SHA-256 hash, or gorm.ErrRecordNotFound. Inactive keys are never
	// matched.
	FindActiveKeyByHash(hash string) (*model.APIKey, error)

	// ResetRateWindow replaces the rate window fields with a fresh window
	// of (windowStart, 1).
	ResetRateWindow(id uint, windowStart string) error

	// IncrementRateCount atomically increments the in-window request count
	// by one.
	IncrementRateCount(id uint) error

	// IncrementUsage atomically increments the lifetime and monthly usage
	// counters by one and records the last-used timestamp.
	IncrementUsage(id uint, lastUsed string) error

	// ResetAllMonthlyUsage zeroes the monthly counter on every key. Run by
	// the scheduler at the start of each month.
	ResetAllMonthlyUsage() error

	CreateAPIKey(key *model.APIKey) error
	ListAPIKeys() ([]model.APIKey, error)
	GetAPIKey(id uint) (*model.APIKey, error)
	UpdateAPIKey(key *model.APIKey) error
	DeleteAPIKey(id uint) error

	GetDB() *gorm.DB
}

type gormService struct {
	db *gorm.DB
}

// NewService opens the database described by the configuration and
// migrates the schema.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&model.APIKey{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &gormService{db: db}, nil
}

// GetDB exposes the underlying gorm handle, primarily for tests.
func (s *gormService) GetDB() *gorm.DB {
	return s.db
}

func (s *gormService) FindActiveKeyByHash(hash string) (*model.APIKey, error) {
	var key model.APIKey
	result := s.db.Where("key_hash = ? AND active = ?", hash, true).First(&key)
	if result.Error != nil {
		return nil, result.Error
	}
	return &key, nil
}

func (s *gormService) ResetRateWindow(id uint, windowStart string) error {
	result := s.db.Model(&model.APIKey{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"rate_window_start":  windowStart,
		"rate_request_count": 1,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to reset rate window for key %d: %w", id, result.Error)
	}
	return nil
}

func (s *gormService) IncrementRateCount(id uint) error {
	result := s.db.Model(&model.APIKey{}).Where("id = ?", id).
		UpdateColumn("rate_request_count", gorm.Expr("rate_request_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment rate count for key %d: %w", id, result.Error)
	}
	return nil
}

func (s *gormService) IncrementUsage(id uint, lastUsed string) error {
	result := s.db.Model(&model.APIKey{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"requests_count":      gorm.Expr("requests_count + 1"),
		"requests_this_month": gorm.Expr("requests_this_month + 1"),
		"last_used_at":        lastUsed,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage for key %d: %w", id, result.Error)
	}
	return nil
}

func (s *gormService) ResetAllMonthlyUsage() error {
	result := s.db.Model(&model.APIKey{}).Where("requests_this_month > 0").
		UpdateColumn("requests_this_month", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset monthly usage: %w", result.Error)
	}
	return nil
}

func (s *gormService) CreateAPIKey(key *model.APIKey) error {
	if err := s.db.Create(key).Error; err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (s *gormService) ListAPIKeys() ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := s.db.Order("id asc").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

func (s *gormService) GetAPIKey(id uint) (*model.APIKey, error) {
	var key model.APIKey
	if err := s.db.First(&key, id).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *gormService) UpdateAPIKey(key *model.APIKey) error {
	if err := s.db.Save(key).Error; err != nil {
		return fmt.Errorf("failed to update api key %d: %w", key.ID, err)
	}
	return nil
}

func (s *gormService) DeleteAPIKey(id uint) error {
	result := s.db.Delete(&model.APIKey{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete api key %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
