package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fieldMessage(e))
	}
	return strings.Join(messages, ", ")
}

func fieldMessage(e validator.FieldError) string {
	field := toSnakeCase(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters the same way.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return
	}
	BadRequest(c, "Invalid request payload: "+err.Error())
}
