package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/cdr-indicators/internal/models"
	"github.com/jengzang/cdr-indicators/internal/service"
	"github.com/jengzang/cdr-indicators/pkg/response"
)

// IndicatorHandler handles HTTP requests for indicators
type IndicatorHandler struct {
	service *service.IndicatorService
}

// NewIndicatorHandler creates a new indicator handler
func NewIndicatorHandler(service *service.IndicatorService) *IndicatorHandler {
	return &IndicatorHandler{service: service}
}

// ListIndicators handles GET /api/v1/indicators
func (h *IndicatorHandler) ListIndicators(c *gin.Context) {
	response.Success(c, h.service.Indicators())
}

// GetIndicator handles GET /api/v1/users/:id/indicators/:name
func (h *IndicatorHandler) GetIndicator(c *gin.Context) {
	var filter models.IndicatorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	result, err := h.service.Compute(c.Param("id"), c.Param("name"), filter)
	if err != nil {
		response.FromError(c, "Failed to compute indicator", err)
		return
	}

	response.Success(c, result)
}

// GetAllIndicators handles GET /api/v1/users/:id/indicators
func (h *IndicatorHandler) GetAllIndicators(c *gin.Context) {
	var filter models.IndicatorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	result, err := h.service.ComputeAll(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		response.FromError(c, "Failed to compute indicators", err)
		return
	}

	response.Success(c, result)
}
