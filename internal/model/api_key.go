package model

import (
	"gorm.io/gorm"
)

// APIKey represents a client's API key for accessing the service.
// Only the SHA-256 hash of the secret is stored; the plaintext is shown to
// the caller exactly once at creation.
type APIKey struct {
	gorm.Model
	KeyHash   string `gorm:"type:varchar(64);uniqueIndex;not null"`
	KeySuffix string `gorm:"type:varchar(8)"`
	UserEmail string `gorm:"type:varchar(255);index"`
	Plan      string `gorm:"type:varchar(50);default:'free';not null"`

	// CustomLimit overrides the plan's monthly request limit when set.
	CustomLimit *int

	// RateWindowStart marks the start of the current 60-second admission
	// window as an RFC3339 string. An empty or unparseable value means the
	// window is expired and must be reset.
	RateWindowStart  string `gorm:"type:varchar(64)"`
	RateRequestCount int    `gorm:"default:0;not null"`

	RequestsThisMonth int    `gorm:"default:0;not null"`
	RequestsCount     int64  `gorm:"default:0;not null"`
	LastUsedAt        string `gorm:"type:varchar(64)"`

	Active bool `gorm:"default:true;not null"`
}
