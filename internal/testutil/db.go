// Package testutil provides an in-memory store for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

// NewStore returns a migrated sqlite store that lives for the duration of t.
func NewStore(t *testing.T) *repository.GormStore {
	t.Helper()

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory", uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return repository.NewGormStore(db)
}

// SeedCatalog creates one service with one active doctor.
func SeedCatalog(t *testing.T, store repository.Store, serviceName string, durationMinutes int) (*models.Service, *models.Doctor) {
	t.Helper()
	ctx := context.Background()

	svc := &models.Service{Name: serviceName, DurationMinutes: durationMinutes}
	require.NoError(t, store.CreateService(ctx, svc))

	doc := &models.Doctor{Name: "Dr. " + serviceName, ServiceID: svc.ID, Active: true}
	require.NoError(t, store.CreateDoctor(ctx, doc))

	return svc, doc
}
