package services

import (
	"strings"
	"time"

	"dental-clinic-server/internal/apperrors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// normalizeDate validates a YYYY-MM-DD date and returns it trimmed.
func normalizeDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field + " is required")
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", apperrors.NewValidationError(field + " must be in YYYY-MM-DD format")
	}
	return d.Format(dateLayout), nil
}

// normalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM.
func normalizeTime(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field + " is required")
	}
	for _, layout := range []string{timeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", apperrors.NewValidationError(field + " must be in HH:MM format")
}

// slotStart combines a stored date and time into a wall-clock instant.
func slotStart(date, clock string) (time.Time, error) {
	return time.Parse(dateLayout+" "+timeLayout, date+" "+clock)
}
