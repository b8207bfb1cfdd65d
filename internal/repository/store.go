package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dental-clinic-server/internal/apperrors"
)

// Store is the relational record store. Every method runs against the
// connection or transaction the Store was created from.
type Store interface {
	AppointmentRepository
	HistoryRepository
	CatalogRepository
	FeedbackRepository
	UserRepository

	// Transaction runs fn inside one database transaction. fn must only use
	// the Store it receives; returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle, mainly for health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translate maps GORM errors onto the application error taxonomy.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(entity + " not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.NewConflictError(entity + " already exists")
	}
	return apperrors.NewInternalError("database error on "+entity, err)
}
