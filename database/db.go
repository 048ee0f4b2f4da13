package database

import (
	"fmt"
	"os"

	"pothole-backend/database/seeders"
	"pothole-backend/logger"
	"pothole-backend/models/authority"
	"pothole-backend/models/citizen"
	"pothole-backend/models/department"
	"pothole-backend/models/log"
	"pothole-backend/models/secret"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection, runs migrations and seeds
// reference data
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE") // Optional: "disable", "require", etc.

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// services can map them onto the duplicate-account errors.
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := Migrate(db); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	seeders.SeedDepartments(db)

	return db, nil
}

// Migrate applies the schema for every model the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&secret.Secret{},
		&secret.SecretEvent{},
		&citizen.Citizen{},
		&authority.Authority{},
		&authority.Verification{},
		&department.Department{},
		&log.Log{},
	)
}
