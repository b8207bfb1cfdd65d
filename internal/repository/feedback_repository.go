package repository

import (
	"context"

	"dental-clinic-server/internal/models"
)

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error
	GetFeedback(ctx context.Context, id string) (*models.Feedback, error)
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
}

func (s *GormStore) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	return translate(s.db.WithContext(ctx).Create(feedback).Error, "feedback")
}

func (s *GormStore) GetFeedback(ctx context.Context, id string) (*models.Feedback, error) {
	var f models.Feedback
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, translate(err, "feedback")
	}
	return &f, nil
}

func (s *GormStore) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	var items []models.Feedback
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, translate(err, "feedback")
	}
	return items, nil
}
