package services

import (
	"context"
	"strings"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

type ServiceInput struct {
	Name            string
	Description     string
	DurationMinutes int
}

type DoctorInput struct {
	Name      string
	ServiceID string
	Email     string
	Phone     string
	Active    *bool
}

// CatalogService manages the services offered and the doctors providing them.
type CatalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.ListServices(ctx)
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	return s.store.GetService(ctx, id)
}

func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	svc := &models.Service{}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id string, in ServiceInput) (*models.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService refuses to remove a service that doctors still belong to.
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetService(ctx, id); err != nil {
			return err
		}
		doctors, err := tx.ListDoctors(ctx, repository.DoctorFilter{ServiceID: id, IncludeInactive: true})
		if err != nil {
			return err
		}
		if len(doctors) > 0 {
			return apperrors.NewConflictError("service still has doctors assigned")
		}
		return tx.DeleteService(ctx, id)
	})
}

func applyServiceInput(svc *models.Service, in ServiceInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.NewValidationError("name is required")
	}
	if in.DurationMinutes < 0 {
		return apperrors.NewValidationError("duration_minutes must not be negative")
	}
	svc.Name = name
	svc.Description = in.Description
	svc.DurationMinutes = in.DurationMinutes
	if svc.DurationMinutes == 0 {
		svc.DurationMinutes = int(models.DefaultServiceDuration.Minutes())
	}
	return nil
}

// ListDoctors returns active doctors ordered by name, optionally only those
// providing serviceID.
func (s *CatalogService) ListDoctors(ctx context.Context, serviceID string) ([]models.Doctor, error) {
	return s.store.ListDoctors(ctx, repository.DoctorFilter{ServiceID: strings.TrimSpace(serviceID)})
}

func (s *CatalogService) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	return s.store.GetDoctor(ctx, id)
}

func (s *CatalogService) CreateDoctor(ctx context.Context, in DoctorInput) (*models.Doctor, error) {
	doctor := &models.Doctor{Active: true}
	if err := s.applyDoctorInput(ctx, doctor, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateDoctor(ctx, doctor); err != nil {
		return nil, err
	}
	return s.store.GetDoctor(ctx, doctor.ID)
}

func (s *CatalogService) UpdateDoctor(ctx context.Context, id string, in DoctorInput) (*models.Doctor, error) {
	doctor, err := s.store.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyDoctorInput(ctx, doctor, in); err != nil {
		return nil, err
	}
	doctor.Service = nil
	if err := s.store.UpdateDoctor(ctx, doctor); err != nil {
		return nil, err
	}
	return s.store.GetDoctor(ctx, id)
}

func (s *CatalogService) DeleteDoctor(ctx context.Context, id string) error {
	return s.store.DeleteDoctor(ctx, id)
}

func (s *CatalogService) applyDoctorInput(ctx context.Context, doctor *models.Doctor, in DoctorInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.NewValidationError("name is required")
	}
	serviceID := strings.TrimSpace(in.ServiceID)
	if serviceID == "" {
		return apperrors.NewValidationError("service_id is required")
	}
	if _, err := s.store.GetService(ctx, serviceID); err != nil {
		return referenceError(err, "service")
	}

	doctor.Name = name
	doctor.ServiceID = serviceID
	doctor.Email = strings.TrimSpace(in.Email)
	doctor.Phone = strings.TrimSpace(in.Phone)
	if in.Active != nil {
		doctor.Active = *in.Active
	}
	return nil
}
