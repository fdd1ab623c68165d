package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mealplan-system/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func MigrateOrderingDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.CompanyShift{},
		&models.Customer{},
		&models.Membership{},
		&models.Restaurant{},
		&models.Order{},
		&models.DiscountCode{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate ordering database: %w", err)
	}
	log.Println("Ordering database migrated")
	return nil
}
