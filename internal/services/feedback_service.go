package services

import (
	"context"
	"strings"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

type FeedbackInput struct {
	Name    string
	Phone   string
	Message string
}

type FeedbackService struct {
	store repository.FeedbackRepository
}

func NewFeedbackService(store repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{store: store}
}

func (s *FeedbackService) Create(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	f := &models.Feedback{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
	}
	if f.Message == "" {
		return nil, apperrors.NewValidationError("message is required")
	}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns feedback newest first. A phone filter keeps entries whose
// digits contain the query digits.
func (s *FeedbackService) List(ctx context.Context, phone string) ([]models.Feedback, error) {
	items, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}
	digits := NormalizePhone(phone)
	if digits == "" {
		return items, nil
	}
	filtered := make([]models.Feedback, 0, len(items))
	for _, f := range items {
		if strings.Contains(NormalizePhone(f.Phone), digits) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*models.Feedback, error) {
	return s.store.GetFeedback(ctx, id)
}
