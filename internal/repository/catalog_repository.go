package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
)

// CatalogRepository stores the services the clinic offers and the doctors
// that provide them.
type CatalogRepository interface {
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context) ([]models.Service, error)

	CreateDoctor(ctx context.Context, doctor *models.Doctor) error
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
	UpdateDoctor(ctx context.Context, doctor *models.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error)
}

type DoctorFilter struct {
	ServiceID       string
	IncludeInactive bool
}

func (s *GormStore) CreateService(ctx context.Context, service *models.Service) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(service).Error
	return translate(err, "service")
}

func (s *GormStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, translate(err, "service")
	}
	return &svc, nil
}

func (s *GormStore) UpdateService(ctx context.Context, service *models.Service) error {
	service.UpdatedAt = time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(service).
		Select("name", "description", "duration_minutes", "updated_at").
		Updates(service)
	if res.Error != nil {
		return translate(res.Error, "service")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("service not found")
	}
	return nil
}

func (s *GormStore) DeleteService(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Service{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "service")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("service not found")
	}
	return nil
}

func (s *GormStore) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, translate(err, "service")
	}
	return services, nil
}

func (s *GormStore) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(doctor).Error
	return translate(err, "doctor")
}

func (s *GormStore) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.db.WithContext(ctx).Preload("Service").First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err, "doctor")
	}
	return &d, nil
}

func (s *GormStore) UpdateDoctor(ctx context.Context, doctor *models.Doctor) error {
	doctor.UpdatedAt = time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(doctor).
		Select("name", "service_id", "email", "phone", "active", "updated_at").
		Omit(clause.Associations).
		Updates(doctor)
	if res.Error != nil {
		return translate(res.Error, "doctor")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("doctor not found")
	}
	return nil
}

func (s *GormStore) DeleteDoctor(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Doctor{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "doctor")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("doctor not found")
	}
	return nil
}

func (s *GormStore) ListDoctors(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error) {
	q := s.db.WithContext(ctx).Model(&models.Doctor{}).Preload("Service")
	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.ServiceID != "" {
		q = q.Where("service_id = ?", filter.ServiceID)
	}

	var doctors []models.Doctor
	if err := q.Order("name ASC").Find(&doctors).Error; err != nil {
		return nil, translate(err, "doctor")
	}
	return doctors, nil
}
