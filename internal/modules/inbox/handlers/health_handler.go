package handlers

import (
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/coordinator"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/llm"
	"github.com/gofiber/fiber/v2"
)

// StatusReporter exposes the last coordinator poll
type StatusReporter interface {
	LastStatus() (*coordinator.ServerStatus, error)
}

type HealthHandler struct {
	llmService  *llm.Service
	coordinator StatusReporter
}

// NewHealthHandler creates the handler; coord may be nil when no coordinator is configured
func NewHealthHandler(llmService *llm.Service, coord StatusReporter) *HealthHandler {
	return &HealthHandler{llmService: llmService, coordinator: coord}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive and report the last coordinator status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":       "ok",
		"service":      "support-console-api",
		"llm_provider": h.llmService.GetProviderName(),
	}

	if h.coordinator != nil {
		status, err := h.coordinator.LastStatus()
		switch {
		case err != nil:
			resp["coordinator"] = fiber.Map{"status": "unreachable", "error": err.Error()}
		case status != nil:
			resp["coordinator"] = status
		default:
			resp["coordinator"] = fiber.Map{"status": "unknown"}
		}
	}

	return c.JSON(resp)
}
