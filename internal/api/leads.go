package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habicasa/backend/internal/leads"
	"go.uber.org/zap"
)

// LeadHandler serves the ally-facing lead pipeline endpoints.
type LeadHandler struct {
	svc    *leads.Service
	logger *zap.Logger
}

// NewLeadHandler creates a LeadHandler.
func NewLeadHandler(svc *leads.Service, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{svc: svc, logger: logger}
}

// Register mounts the lead routes on an authenticated route group.
func (h *LeadHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/leads", h.Create)
	rg.GET("/leads", h.List)
	rg.PATCH("/leads/:id/status", h.ChangeStatus)
}

type createLeadRequest struct {
	PropertyID  string `json:"property_id" binding:"required,uuid"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	Notes       string `json:"notes"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create handles POST /api/v1/leads.
func (h *LeadHandler) Create(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id, client_name and client_phone are required"})
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property_id"})
		return
	}

	l, err := h.svc.Capture(c.Request.Context(), AllyID(c), propertyID, req.ClientName, req.ClientPhone, req.Notes)
	if err != nil {
		if errors.Is(err, leads.ErrPropertyUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "property not available"})
			return
		}
		h.logger.Error("lead capture failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	recordLeadCaptured()
	c.JSON(http.StatusCreated, l)
}

// List handles GET /api/v1/leads.
func (h *LeadHandler) List(c *gin.Context) {
	out, err := h.svc.ListForAlly(c.Request.Context(), AllyID(c))
	if err != nil {
		h.logger.Error("lead list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if out == nil {
		out = []*leads.Lead{}
	}
	c.JSON(http.StatusOK, gin.H{"leads": out})
}

// ChangeStatus handles PATCH /api/v1/leads/:id/status.
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	next := leads.Status(req.Status)
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	l, err := h.svc.ChangeStatus(c.Request.Context(), AllyID(c), id, next)
	switch {
	case errors.Is(err, leads.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
	case errors.Is(err, leads.ErrBadTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "status transition not allowed"})
	case err != nil:
		h.logger.Error("lead status change failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusOK, l)
	}
}
