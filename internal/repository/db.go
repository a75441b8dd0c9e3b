// File: internal/repository/db.go
package repository

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/iyunix/go-meddy/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the relational store. postgres:// and postgresql:// URLs use
// the postgres driver; anything else is a SQLite DSN (file path or
// "file::memory:").
func Open(databaseURL string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	if isPostgresURL(databaseURL) {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the application tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.ConversationMessage{}, &domain.Document{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func isPostgresURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}
