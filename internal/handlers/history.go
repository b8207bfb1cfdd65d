package handlers

import (
	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/services"
	"dental-clinic-server/internal/utils"
)

// HistoryHandler serves the appointment archive and the calendar.
type HistoryHandler struct {
	Queries *services.QueryService
}

func NewHistoryHandler(queries *services.QueryService) *HistoryHandler {
	return &HistoryHandler{Queries: queries}
}

type HistoryListQuery struct {
	Phone     string `form:"phone"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	DoctorID  string `form:"doctor_id"`
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var q HistoryListQuery
	if !utils.BindQuery(c, &q) {
		return
	}

	entries, err := h.Queries.ListHistory(c.Request.Context(), services.HistoryQuery{
		Phone:     q.Phone,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		DoctorID:  q.DoctorID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "History fetched successfully", entries)
}

func (h *HistoryHandler) GetHistoryByID(c *gin.Context) {
	entry, err := h.Queries.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "History entry fetched successfully", entry)
}

// MarkVisited flags an archived appointment as attended.
func (h *HistoryHandler) MarkVisited(c *gin.Context) {
	entry, err := h.Queries.MarkVisited(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Marked as visited", entry)
}

type CalendarRequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	DoctorID  string `form:"doctor_id"`
}

// Calendar projects live appointments in a date window onto start and end times.
func (h *HistoryHandler) Calendar(c *gin.Context) {
	var q CalendarRequest
	if !utils.BindQuery(c, &q) {
		return
	}

	entries, err := h.Queries.Calendar(c.Request.Context(), services.CalendarQuery{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		DoctorID:  q.DoctorID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Calendar fetched successfully", entries)
}
