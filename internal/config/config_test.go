package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_DSN", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.JWTExpirationMinutes)
	assert.Equal(t, 168, cfg.JWTRefreshExpirationHours)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/")
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "clinic")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Contains(t, cfg.Database.DSN, "host=db")
	assert.Contains(t, cfg.Database.DSN, "port=5432")
	assert.Contains(t, cfg.Database.DSN, "dbname=clinic")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("DB_DSN", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRATION_MINUTES", "soon")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_EXPIRATION_MINUTES")
}
