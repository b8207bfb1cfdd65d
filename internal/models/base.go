package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// InitDB opens the database for the configured driver and migrates the schema.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// Open connects to the database without touching the schema.
func Open(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "mysql", "":
		dialector = mysql.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	case "sqlite":
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	if config.Driver == "sqlite" {
		// a single connection keeps in-memory databases and writer locking consistent
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate migrates every table of the clinic schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Service{},
		&Doctor{},
		&Appointment{},
		&AppointmentHistory{},
		&Feedback{},
	)
}
