package handlers

import (
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Funds pool, queue depth, loan book and today's settlements (Officer/Admin)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get admin dashboard")
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}
