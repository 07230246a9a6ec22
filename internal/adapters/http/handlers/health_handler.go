package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db   *gorm.DB
	mode string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, mode string) *HealthHandler {
	return &HealthHandler{db: db, mode: mode}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "SPSC coopFund API v1.0 is running",
		"mode":    h.mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	overall, dbStatus := "ok", "healthy"
	status := fiber.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Context())
	}
	if err != nil {
		overall, dbStatus = "degraded", "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "SPSC coopFund API v1.0",
		"version": "1.0.0",
	})
}
