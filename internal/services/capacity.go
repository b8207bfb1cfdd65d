package services

import (
	"context"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/repository"
)

// MaxAppointmentsPerHour is how many live appointments a doctor may hold
// within one clock hour of one day.
const MaxAppointmentsPerHour = 3

// CapacityExceededMessage is returned to clients when a slot is full.
const CapacityExceededMessage = "Doctor already has 3 appointments in this hour. Please choose another time."

// HourOf returns the hour bucket ("HH") of an "HH:MM" time. Minutes are
// truncated, so 09:59 and 09:00 share a bucket.
func HourOf(clock string) (string, error) {
	if len(clock) < 2 || !isDigit(clock[0]) || !isDigit(clock[1]) {
		return "", apperrors.NewValidationError("appointment_time must be in HH:MM format")
	}
	return clock[:2], nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// CheckCapacity reports whether doctorID can take one more appointment at
// date/clock. excludeID is the appointment being edited, if any. An empty
// doctorID is never constrained.
func CheckCapacity(ctx context.Context, store repository.AppointmentRepository, doctorID, date, clock, excludeID string) (bool, error) {
	if doctorID == "" {
		return true, nil
	}
	hour, err := HourOf(clock)
	if err != nil {
		return false, err
	}
	count, err := store.CountDoctorHour(ctx, doctorID, date, hour, excludeID)
	if err != nil {
		return false, err
	}
	return count < MaxAppointmentsPerHour, nil
}

// ReserveSlot locks the doctor and checks capacity. It must run inside a
// transaction together with the write that claims the slot.
func ReserveSlot(ctx context.Context, tx repository.Store, doctorID *string, date, clock, excludeID string) error {
	if doctorID == nil || *doctorID == "" {
		return nil
	}
	if _, err := tx.LockDoctor(ctx, *doctorID); err != nil {
		return err
	}
	ok, err := CheckCapacity(ctx, tx, *doctorID, date, clock, excludeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError(CapacityExceededMessage)
	}
	return nil
}
