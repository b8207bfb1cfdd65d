package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

// SystemActor is recorded as changed_by when no staff user is known.
const SystemActor = "api"

// TransitionResult is either Retained or Archived.
type TransitionResult interface {
	transitionResult()
}

// Retained means the appointment is still live.
type Retained struct {
	Appointment *models.Appointment
}

// Archived means the live appointment was deleted and History replaced it.
type Archived struct {
	AppointmentID string
	History       *models.AppointmentHistory
}

func (Retained) transitionResult() {}
func (Archived) transitionResult() {}

// Snapshot copies appt into a history entry. appt should carry its Service
// and Doctor so their names are captured.
func Snapshot(appt *models.Appointment, newStatus models.AppointmentStatus, actor, notes string) *models.AppointmentHistory {
	entry := &models.AppointmentHistory{
		AppointmentID:   appt.ID,
		Name:            appt.Name,
		Email:           appt.Email,
		Phone:           appt.Phone,
		ServiceID:       appt.ServiceID,
		AppointmentDate: appt.AppointmentDate,
		AppointmentTime: appt.AppointmentTime,
		Message:         appt.Message,
		DoctorID:        appt.DoctorID,
		PreviousStatus:  appt.Status,
		NewStatus:       newStatus,
		ChangedBy:       actor,
		Notes:           notes,
	}
	if appt.Service != nil {
		entry.ServiceName = appt.Service.Name
	}
	if appt.Doctor != nil {
		entry.DoctorName = appt.Doctor.Name
	}
	return entry
}

// Transition moves appt to newStatus. A terminal status writes the history
// entry and deletes the live row in one transaction, history first.
func Transition(ctx context.Context, store repository.Store, appt *models.Appointment, newStatus models.AppointmentStatus, actor, notes string) (TransitionResult, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status " + string(newStatus))
	}
	if newStatus == appt.Status {
		return Retained{Appointment: appt}, nil
	}
	if actor == "" {
		actor = SystemActor
	}

	entry := Snapshot(appt, newStatus, actor, notes)
	updated := *appt
	updated.Status = newStatus

	err := store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CreateHistory(ctx, entry); err != nil {
			return err
		}
		if newStatus.IsTerminal() {
			return tx.DeleteAppointment(ctx, appt.ID)
		}
		return tx.UpdateAppointment(ctx, &updated)
	})
	if err != nil {
		log.Error().Err(err).
			Str("appointment_id", appt.ID).
			Str("new_status", string(newStatus)).
			Msg("status transition rolled back")
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to archive appointment", err)
	}

	log.Info().
		Str("appointment_id", appt.ID).
		Str("history_id", entry.ID).
		Str("previous_status", string(appt.Status)).
		Str("new_status", string(newStatus)).
		Str("changed_by", actor).
		Msg("appointment status changed")

	if newStatus.IsTerminal() {
		return Archived{AppointmentID: appt.ID, History: entry}, nil
	}
	return Retained{Appointment: &updated}, nil
}
