package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moderationhq/modgate/pkg/config"
)

type researchHealthHandler struct {
	cfg *config.Config
}

func NewResearchHealthHandler(cfg *config.Config) Handler {
	return &researchHealthHandler{cfg: cfg}
}

// Handle @Summary Research Agent Health Check
// @Tags Research
// @Produce json
// @Success 200 {object} map[string]interface{} "Agent health"
// @Router /research/health [get]
func (h *researchHealthHandler) Handle(c *fiber.Ctx) error {
	apiKeyStatus := "configured"
	if h.cfg.Research.APIKey == "" {
		apiKeyStatus = "missing"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":         "healthy",
		"model":          h.cfg.Research.Model,
		"api_key_status": apiKeyStatus,
		"features": fiber.Map{
			"input_validation":    true,
			"citation_extraction": true,
			"answer_moderation":   true,
			"reasoning_steps":     true,
		},
		"message": "research agent is operational",
	})
}
