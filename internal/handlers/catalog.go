package handlers

import (
	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/services"
	"dental-clinic-server/internal/utils"
)

// CatalogHandler handles doctor and service requests.
type CatalogHandler struct {
	Catalog *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

// ServiceRequest represents the request body for creating or replacing a service.
type ServiceRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0"`
}

// DoctorRequest represents the request body for creating or replacing a doctor.
type DoctorRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	ServiceID string `json:"service_id" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email,max=255"`
	Phone     string `json:"phone" binding:"max=50"`
	Active    *bool  `json:"active"`
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	items, err := h.Catalog.ListServices(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Services fetched successfully", items)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.Catalog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Service fetched successfully", svc)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	svc, err := h.Catalog.CreateService(c.Request.Context(), services.ServiceInput(req))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Service created successfully", svc)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	svc, err := h.Catalog.UpdateService(c.Request.Context(), c.Param("id"), services.ServiceInput(req))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Service updated successfully", svc)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.Catalog.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Service deleted successfully", nil)
}

// ListDoctors returns active doctors, optionally for one service.
func (h *CatalogHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Catalog.ListDoctors(c.Request.Context(), c.Query("service_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

func (h *CatalogHandler) GetDoctor(c *gin.Context) {
	doctor, err := h.Catalog.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

func (h *CatalogHandler) CreateDoctor(c *gin.Context) {
	var req DoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	doctor, err := h.Catalog.CreateDoctor(c.Request.Context(), services.DoctorInput(req))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Doctor created successfully", doctor)
}

func (h *CatalogHandler) UpdateDoctor(c *gin.Context) {
	var req DoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	doctor, err := h.Catalog.UpdateDoctor(c.Request.Context(), c.Param("id"), services.DoctorInput(req))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

func (h *CatalogHandler) DeleteDoctor(c *gin.Context) {
	if err := h.Catalog.DeleteDoctor(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor deleted successfully", nil)
}
