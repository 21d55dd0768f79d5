package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habicasa/backend/internal/properties"
	"go.uber.org/zap"
)

// propertyLister is the catalog read surface consumed by PropertyHandler.
type propertyLister interface {
	ListActive(ctx context.Context) ([]*properties.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*properties.Property, error)
}

// PropertyHandler serves the read-only property catalog.
type PropertyHandler struct {
	repo   propertyLister
	logger *zap.Logger
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(repo propertyLister, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{repo: repo, logger: logger}
}

// Register mounts the property routes on an authenticated route group.
func (h *PropertyHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/properties", h.List)
	rg.GET("/properties/:id", h.Get)
}

// List handles GET /api/v1/properties. Only active listings are returned.
func (h *PropertyHandler) List(c *gin.Context) {
	out, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("property list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if out == nil {
		out = []*properties.Property{}
	}
	c.JSON(http.StatusOK, gin.H{"properties": out})
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, properties.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		h.logger.Error("property lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, p)
}
