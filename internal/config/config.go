package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Redis                     RedisConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	TokenCleanupSchedule      string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	SSLMode  string
	DSN      string
}

// RedisConfig holds the optional cache connection. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "mysql"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", ""),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "dental"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		DSN:      getEnv("DB_DSN", ""),
	}

	if dbConfig.DSN == "" {
		dsn, err := dbConfig.BuildDSN()
		if err != nil {
			return nil, err
		}
		dbConfig.DSN = dsn
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return &Config{
		Port:             getEnv("PORT", "8000"),
		Origin:           getEnv("ORIGIN", "http://localhost:3000"),
		Environment:      getEnv("NODE_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:         dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		TokenCleanupSchedule:      getEnv("TOKEN_CLEANUP_SCHEDULE", "15 3 * * *"),
	}, nil
}

// BuildDSN assembles the Data Source Name for the configured driver.
func (d DatabaseConfig) BuildDSN() (string, error) {
	switch d.Driver {
	case "mysql":
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, port, d.Name), nil
	case "postgres":
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Username, d.Password, d.Name, port, d.SSLMode), nil
	case "sqlite":
		return d.Name + ".db", nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
