package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Wrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create appointment: %w", NewInternalError("failed to insert", cause))

	assert.True(t, Is(err, ErrorTypeInternal))
	assert.False(t, Is(err, ErrorTypeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to insert", MessageOf(err))
	assert.Equal(t, "INTERNAL: failed to insert: connection reset", errors.Unwrap(err).Error())
}

func TestTypeOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, ErrorTypeInternal, TypeOf(err))
	assert.Equal(t, "boom", MessageOf(err))
}

func TestTypeOf_Validation(t *testing.T) {
	err := NewValidationError("phone is required")
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))
	assert.Equal(t, "VALIDATION: phone is required", err.Error())
}
