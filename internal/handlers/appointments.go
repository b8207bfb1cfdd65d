package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
	"dental-clinic-server/internal/services"
	"dental-clinic-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Queries      *services.QueryService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, queries *services.QueryService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Queries: queries}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. A client supplied status is accepted and ignored.
type CreateAppointmentRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Email           string `json:"email" binding:"omitempty,email,max=255"`
	Phone           string `json:"phone" binding:"required,max=50"`
	ServiceID       string `json:"service_id"`
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	Message         string `json:"message"`
	Status          string `json:"status"`
}

// CreateAppointment handles booking a new appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.Create(c.Request.Context(), services.CreateAppointmentInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ServiceID:       req.ServiceID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Message:         req.Message,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// UpdateAppointmentRequest is a partial edit; omitted fields are unchanged.
type UpdateAppointmentRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Email           *string `json:"email" binding:"omitempty,max=255"`
	Phone           *string `json:"phone" binding:"omitempty,max=50"`
	ServiceID       *string `json:"service_id"`
	DoctorID        *string `json:"doctor_id"`
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	Message         *string `json:"message"`
	Status          *string `json:"status"`
	AdminNotes      *string `json:"admin_notes"`
}

// ArchivedAppointmentResponse is returned when an update approved or
// rejected the appointment and it left the live table.
type ArchivedAppointmentResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Phone          string                   `json:"phone"`
	Status         models.AppointmentStatus `json:"status"`
	Deleted        bool                     `json:"deleted"`
	MovedToHistory bool                     `json:"moved_to_history"`
	HistoryID      string                   `json:"history_id"`
	Message        string                   `json:"message"`
}

// UpdateAppointment handles PATCH and PUT on an appointment. The caller is
// recorded in history when a valid staff token is present.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := services.UpdateAppointmentInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ServiceID:       req.ServiceID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Message:         req.Message,
		AdminNotes:      req.AdminNotes,
	}
	if req.Status != nil {
		status := models.AppointmentStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		in.Status = &status
	}

	actor, ok := middleware.GetUsernameFromContext(c)
	if !ok {
		actor = services.SystemActor
	}

	result, err := h.Appointments.Update(c.Request.Context(), c.Param("id"), in, actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	switch r := result.(type) {
	case services.Archived:
		utils.Success(c, "Appointment moved to history", ArchivedAppointmentResponse{
			ID:             r.AppointmentID,
			Name:           r.History.Name,
			Phone:          r.History.Phone,
			Status:         r.History.NewStatus,
			Deleted:        true,
			MovedToHistory: true,
			HistoryID:      r.History.ID,
			Message:        fmt.Sprintf("Appointment %s and moved to history", strings.ToLower(string(r.History.NewStatus))),
		})
	case services.Retained:
		utils.Success(c, "Appointment updated successfully", r.Appointment)
	}
}

// LookupByPhone handles GET /appointments/by_phone.
func (h *AppointmentHandler) LookupByPhone(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		utils.BadRequest(c, "Phone number is required")
		return
	}

	matches, err := h.Queries.LookupByPhone(c.Request.Context(), phone)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", matches)
}

// ListAppointmentsQuery filters the staff appointment list.
type ListAppointmentsQuery struct {
	Status    string `form:"status"`
	DoctorID  string `form:"doctor_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ListAppointments returns live appointments, newest first.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	var q ListAppointmentsQuery
	if !utils.BindQuery(c, &q) {
		return
	}

	appointments, err := h.Appointments.List(c.Request.Context(), repository.AppointmentFilter{
		Status:    models.AppointmentStatus(strings.ToUpper(q.Status)),
		DoctorID:  q.DoctorID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single live appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, err := h.Appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// DeleteAppointment removes a live appointment without archiving it.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	if err := h.Appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}
