package models

import "time"

// DefaultServiceDuration applies when a service has no duration of its own.
const DefaultServiceDuration = 60 * time.Minute

// Service is a treatment offered by the clinic.
type Service struct {
	BaseModel
	Name            string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	DurationMinutes int    `json:"duration_minutes"`

	Doctors []Doctor `gorm:"foreignKey:ServiceID" json:"-"`
}

// Duration returns how long one appointment for this service lasts.
func (s *Service) Duration() time.Duration {
	if s == nil || s.DurationMinutes <= 0 {
		return DefaultServiceDuration
	}
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Doctor belongs to exactly one Service.
type Doctor struct {
	BaseModel
	Name      string `gorm:"size:255;not null" json:"name"`
	ServiceID string `gorm:"size:36;not null;index" json:"service_id"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`
	Active    bool   `gorm:"not null;index" json:"active"`

	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service,omitempty"`
}

// Feedback is a free-text message left by a patient.
type Feedback struct {
	BaseModel
	Name    string `gorm:"size:255" json:"name"`
	Phone   string `gorm:"size:50;index" json:"phone"`
	Message string `gorm:"type:text" json:"message"`
}
