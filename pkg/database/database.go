package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/seedsofhope/backend/pkg/models"
)

// Open connects to MySQL and migrates the schema. The returned handle is
// passed explicitly to every component that persists state.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if verbose {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxIdleTime(10 * time.Second)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventSpeaker{},
		&models.Ticket{},
		&models.TicketOrder{},
		&models.Donation{},
		&models.WebhookEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
