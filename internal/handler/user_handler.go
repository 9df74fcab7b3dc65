package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/cdr-indicators/internal/service"
	"github.com/jengzang/cdr-indicators/pkg/response"
)

// UserHandler handles HTTP requests for subjects
type UserHandler struct {
	service *service.IndicatorService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *service.IndicatorService) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		response.InternalError(c, "Failed to list users", err)
		return
	}
	response.Success(c, users)
}

// ReloadUser handles POST /api/v1/users/:id/reload
func (h *UserHandler) ReloadUser(c *gin.Context) {
	u, err := h.service.Reload(c.Param("id"))
	if err != nil {
		response.FromError(c, "Failed to reload user", err)
		return
	}

	start, end := u.Span()
	response.Success(c, gin.H{
		"id":          u.Name,
		"records":     len(u.Records()),
		"recharges":   len(u.Recharges()),
		"antennas":    len(u.Antennas()),
		"home":        u.Home(),
		"startTime":   start,
		"endTime":     end,
		"hasCall":     u.HasCall(),
		"hasText":     u.HasText(),
		"hasAntennas": u.HasAntennas(),
	})
}
