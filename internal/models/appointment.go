package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "PENDING"
	StatusApproved AppointmentStatus = "APPROVED"
	StatusRejected AppointmentStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether reaching s removes the live appointment.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Appointment is a live booking request. Only pending requests stay in this
// table; approval or rejection moves them to AppointmentHistory.
type Appointment struct {
	BaseModel
	Name            string            `gorm:"size:255" json:"name"`
	Email           string            `gorm:"size:255" json:"email"`
	Phone           string            `gorm:"size:50;index" json:"phone"`
	ServiceID       *string           `gorm:"size:36;index" json:"service_id"`
	DoctorID        *string           `gorm:"size:36;index:idx_appointments_doctor_slot,priority:1" json:"doctor_id"`
	AppointmentDate string            `gorm:"size:10;index:idx_appointments_doctor_slot,priority:2" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:5" json:"appointment_time"`
	Message         string            `gorm:"type:text" json:"message"`
	Status          AppointmentStatus `gorm:"size:20;not null;index" json:"status"`
	AdminNotes      string            `gorm:"type:text" json:"admin_notes"`

	// Relations
	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// AppointmentHistory is the archived snapshot of an appointment taken when its
// status changed. Rows are never updated except for Visited.
type AppointmentHistory struct {
	ID              string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AppointmentID   string            `gorm:"size:36;index" json:"appointment_id"`
	Name            string            `gorm:"size:255" json:"name"`
	Email           string            `gorm:"size:255" json:"email"`
	Phone           string            `gorm:"size:50;index" json:"phone"`
	ServiceID       *string           `gorm:"size:36" json:"service_id"`
	ServiceName     string            `gorm:"size:255" json:"service_name"`
	AppointmentDate string            `gorm:"size:10;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:5" json:"appointment_time"`
	Message         string            `gorm:"type:text" json:"message"`
	DoctorID        *string           `gorm:"size:36;index" json:"doctor_id"`
	DoctorName      string            `gorm:"size:255" json:"doctor_name"`
	PreviousStatus  AppointmentStatus `gorm:"size:20;not null" json:"previous_status"`
	NewStatus       AppointmentStatus `gorm:"size:20;not null;index" json:"new_status"`
	ChangedBy       string            `gorm:"size:255" json:"changed_by"`
	Notes           string            `gorm:"type:text" json:"notes"`
	Timestamp       time.Time         `gorm:"index" json:"timestamp"`
	Visited         bool              `gorm:"not null" json:"visited"`
}

// BeforeCreate assigns the id and the archive timestamp.
func (h *AppointmentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = tx.NowFunc()
	}
	return nil
}
