package repository

import (
	"context"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
)

type HistoryRepository interface {
	CreateHistory(ctx context.Context, entry *models.AppointmentHistory) error
	GetHistory(ctx context.Context, id string) (*models.AppointmentHistory, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]models.AppointmentHistory, error)
	// MarkHistoryVisited sets Visited on the entry. Already visited entries
	// are left as they are.
	MarkHistoryVisited(ctx context.Context, id string) (*models.AppointmentHistory, error)
}

// HistoryFilter narrows ListHistory. Phone matching is done by callers on
// normalized digits, so it is not part of the filter.
type HistoryFilter struct {
	DoctorID        string
	StartDate       string
	EndDate         string
	ExcludeRejected bool
}

func (s *GormStore) CreateHistory(ctx context.Context, entry *models.AppointmentHistory) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error, "appointment history")
}

func (s *GormStore) GetHistory(ctx context.Context, id string) (*models.AppointmentHistory, error) {
	var h models.AppointmentHistory
	if err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err, "appointment history")
	}
	return &h, nil
}

func (s *GormStore) ListHistory(ctx context.Context, filter HistoryFilter) ([]models.AppointmentHistory, error) {
	q := s.db.WithContext(ctx).Model(&models.AppointmentHistory{})

	if filter.DoctorID != "" {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.StartDate != "" {
		q = q.Where("appointment_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("appointment_date <= ?", filter.EndDate)
	}
	if filter.ExcludeRejected {
		q = q.Where("new_status <> ?", models.StatusRejected)
	}

	var entries []models.AppointmentHistory
	if err := q.Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, translate(err, "appointment history")
	}
	return entries, nil
}

func (s *GormStore) MarkHistoryVisited(ctx context.Context, id string) (*models.AppointmentHistory, error) {
	entry, err := s.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Visited {
		return entry, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.AppointmentHistory{}).
		Where("id = ?", id).
		Update("visited", true).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to mark visit", err)
	}
	entry.Visited = true
	return entry, nil
}
