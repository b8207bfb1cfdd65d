package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/apperrors"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Accepted sends a 202 response for requests that were received but not acted on.
func Accepted(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusAccepted, ResponseData{
		Status:  http.StatusAccepted,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, errorMessage string) {
	Error(c, http.StatusTooManyRequests, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// RespondError writes err using the status code of its apperrors type.
// Internal errors are logged and their cause is not sent to the client.
func RespondError(c *gin.Context, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		NotFound(c, apperrors.MessageOf(err))
	case apperrors.ErrorTypeValidation:
		BadRequest(c, apperrors.MessageOf(err))
	case apperrors.ErrorTypeConflict:
		Conflict(c, apperrors.MessageOf(err))
	case apperrors.ErrorTypeUnauthorized:
		Unauthorized(c, apperrors.MessageOf(err))
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		InternalServerError(c, "Internal server error")
	}
}
