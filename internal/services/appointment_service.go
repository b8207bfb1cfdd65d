package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

// CreateAppointmentInput is a patient's booking request.
type CreateAppointmentInput struct {
	Name            string
	Email           string
	Phone           string
	ServiceID       string
	DoctorID        string
	AppointmentDate string
	AppointmentTime string
	Message         string
}

// UpdateAppointmentInput carries a partial edit. Nil fields are left alone;
// an empty ServiceID or DoctorID clears the reference.
type UpdateAppointmentInput struct {
	Name            *string
	Email           *string
	Phone           *string
	ServiceID       *string
	DoctorID        *string
	AppointmentDate *string
	AppointmentTime *string
	Message         *string
	Status          *models.AppointmentStatus
	AdminNotes      *string
}

type AppointmentService struct {
	store repository.Store
}

func NewAppointmentService(store repository.Store) *AppointmentService {
	return &AppointmentService{store: store}
}

// Create books a new pending appointment. The capacity check and the insert
// share one transaction.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	appt := &models.Appointment{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Message: in.Message,
		Status:  models.StatusPending,
	}
	if appt.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if appt.Phone == "" {
		return nil, apperrors.NewValidationError("phone is required")
	}

	var err error
	if appt.AppointmentDate, err = normalizeDate("appointment_date", in.AppointmentDate); err != nil {
		return nil, err
	}
	if appt.AppointmentTime, err = normalizeTime("appointment_time", in.AppointmentTime); err != nil {
		return nil, err
	}
	appt.ServiceID = optionalID(in.ServiceID)
	appt.DoctorID = optionalID(in.DoctorID)

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := resolveReferences(ctx, tx, appt, true); err != nil {
			return err
		}
		if err := ReserveSlot(ctx, tx, appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, ""); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("appointment_id", appt.ID).
		Str("appointment_date", appt.AppointmentDate).
		Str("appointment_time", appt.AppointmentTime).
		Msg("appointment created")
	return appt, nil
}

// Update applies a partial edit. A change to APPROVED or REJECTED archives
// the appointment as it was before this request and discards the other
// edits; the result is then Archived.
func (s *AppointmentService) Update(ctx context.Context, id string, in UpdateAppointmentInput, actor string) (TransitionResult, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status " + string(*in.Status))
	}

	var result TransitionResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}

		if in.Status != nil && *in.Status != current.Status {
			notes := current.AdminNotes
			if in.AdminNotes != nil {
				notes = *in.AdminNotes
			}
			res, err := Transition(ctx, tx, current, *in.Status, actor, notes)
			if err != nil {
				return err
			}
			switch r := res.(type) {
			case Archived:
				result = r
				return nil
			case Retained:
				current = r.Appointment
			}
		}

		updated := *current
		if err := applyEdits(&updated, in); err != nil {
			return err
		}
		if err := resolveReferences(ctx, tx, &updated, doctorChanged(current.DoctorID, updated.DoctorID)); err != nil {
			return err
		}
		if err := ReserveSlot(ctx, tx, updated.DoctorID, updated.AppointmentDate, updated.AppointmentTime, updated.ID); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, &updated); err != nil {
			return err
		}

		reloaded, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		result = Retained{Appointment: reloaded}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context, filter repository.AppointmentFilter) ([]models.Appointment, error) {
	return s.store.ListAppointments(ctx, filter)
}

// Delete removes a live appointment without archiving it.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	log.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

func applyEdits(a *models.Appointment, in UpdateAppointmentInput) error {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
		if a.Name == "" {
			return apperrors.NewValidationError("name must not be empty")
		}
	}
	if in.Email != nil {
		a.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		a.Phone = strings.TrimSpace(*in.Phone)
		if a.Phone == "" {
			return apperrors.NewValidationError("phone must not be empty")
		}
	}
	if in.Message != nil {
		a.Message = *in.Message
	}
	if in.AdminNotes != nil {
		a.AdminNotes = *in.AdminNotes
	}
	if in.ServiceID != nil {
		a.ServiceID = optionalID(*in.ServiceID)
		a.Service = nil
	}
	if in.DoctorID != nil {
		a.DoctorID = optionalID(*in.DoctorID)
		a.Doctor = nil
	}

	var err error
	if in.AppointmentDate != nil {
		if a.AppointmentDate, err = normalizeDate("appointment_date", *in.AppointmentDate); err != nil {
			return err
		}
	}
	if in.AppointmentTime != nil {
		if a.AppointmentTime, err = normalizeTime("appointment_time", *in.AppointmentTime); err != nil {
			return err
		}
	}
	return nil
}

// resolveReferences checks that the referenced service and doctor exist and
// agree with each other. A doctor without a service fills in the doctor's.
// newDoctor rejects doctors that no longer take bookings.
func resolveReferences(ctx context.Context, tx repository.Store, a *models.Appointment, newDoctor bool) error {
	if a.ServiceID != nil {
		if _, err := tx.GetService(ctx, *a.ServiceID); err != nil {
			return referenceError(err, "service")
		}
	}
	if a.DoctorID == nil {
		return nil
	}

	doctor, err := tx.GetDoctor(ctx, *a.DoctorID)
	if err != nil {
		return referenceError(err, "doctor")
	}
	if newDoctor && !doctor.Active {
		return apperrors.NewValidationError("doctor is not accepting appointments")
	}
	if a.ServiceID == nil {
		serviceID := doctor.ServiceID
		a.ServiceID = &serviceID
	} else if *a.ServiceID != doctor.ServiceID {
		return apperrors.NewValidationError("doctor does not provide the selected service")
	}
	return nil
}

// doctorChanged reports whether an edit assigns a different doctor.
func doctorChanged(before, after *string) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}

func referenceError(err error, entity string) error {
	if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
		return apperrors.NewValidationError("unknown " + entity)
	}
	return err
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
