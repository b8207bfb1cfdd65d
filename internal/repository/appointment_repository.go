package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
)

type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	// GetAppointment loads a live appointment with its service and doctor.
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, appointment *models.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// CountDoctorHour counts live appointments for doctorID on date whose
	// time starts with hour ("HH"), ignoring excludeID.
	CountDoctorHour(ctx context.Context, doctorID, date, hour, excludeID string) (int64, error)
	// LockDoctor takes a row lock on the doctor until the transaction ends.
	LockDoctor(ctx context.Context, doctorID string) (*models.Doctor, error)
}

// AppointmentFilter narrows ListAppointments. Zero values mean "any".
type AppointmentFilter struct {
	Status        models.AppointmentStatus
	ExcludeStatus models.AppointmentStatus
	DoctorID      string
	StartDate     string
	EndDate       string
}

var appointmentColumns = []string{
	"name", "email", "phone", "service_id", "doctor_id",
	"appointment_date", "appointment_time", "message",
	"status", "admin_notes", "updated_at",
}

func (s *GormStore) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error
	return translate(err, "appointment")
}

func (s *GormStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Service").
		Preload("Doctor").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "appointment")
	}
	return &a, nil
}

func (s *GormStore) UpdateAppointment(ctx context.Context, appointment *models.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(appointment).
		Select(appointmentColumns).
		Omit(clause.Associations).
		Updates(appointment)
	if res.Error != nil {
		return translate(res.Error, "appointment")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

func (s *GormStore) DeleteAppointment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "appointment")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

func (s *GormStore) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	q := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Preload("Service").
		Preload("Doctor")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		q = q.Where("status <> ?", filter.ExcludeStatus)
	}
	if filter.DoctorID != "" {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.StartDate != "" {
		q = q.Where("appointment_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("appointment_date <= ?", filter.EndDate)
	}

	var appointments []models.Appointment
	if err := q.Order("created_at DESC").Find(&appointments).Error; err != nil {
		return nil, translate(err, "appointment")
	}
	return appointments, nil
}

func (s *GormStore) CountDoctorHour(ctx context.Context, doctorID, date, hour, excludeID string) (int64, error) {
	q := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("appointment_date = ?", date).
		Where("appointment_time LIKE ?", hour+":%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, translate(err, "appointment")
	}
	return count, nil
}

func (s *GormStore) LockDoctor(ctx context.Context, doctorID string) (*models.Doctor, error) {
	var d models.Doctor
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", doctorID).Error
	if err != nil {
		return nil, translate(err, "doctor")
	}
	return &d, nil
}
