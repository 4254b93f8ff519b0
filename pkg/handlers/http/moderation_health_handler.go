package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/config"
	"github.com/moderationhq/modgate/pkg/moderation"
)

type moderationHealthHandler struct {
	logger  *logrus.Logger
	service *moderation.Service
	cfg     *config.Config
}

func NewModerationHealthHandler(logger *logrus.Logger, service *moderation.Service, cfg *config.Config) Handler {
	return &moderationHealthHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}
}

// Handle @Summary Content Moderation Health Check
// @Description Reports pipeline status, configured models and capabilities
// @Tags Moderation
// @Produce json
// @Success 200 {object} map[string]interface{} "Service health"
// @Router /moderation/health [get]
func (h *moderationHealthHandler) Handle(c *fiber.Ctx) error {
	visionKeyStatus := "configured"
	if h.cfg.Providers.Vision.APIKey == "" {
		visionKeyStatus = "missing"
	}
	textKeyStatus := "configured"
	if h.cfg.Providers.Text.APIKey == "" {
		textKeyStatus = "missing"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"service": "content_moderation",
		"providers": fiber.Map{
			"vision": fiber.Map{
				"provider":       h.cfg.Providers.Vision.Provider,
				"model":          h.cfg.Providers.Vision.Model,
				"api_key_status": visionKeyStatus,
			},
			"text": fiber.Map{
				"provider":       h.cfg.Providers.Text.Provider,
				"model":          h.cfg.Providers.Text.Model,
				"api_key_status": textKeyStatus,
			},
		},
		"capabilities":      h.service.Capabilities(),
		"supported_formats": []string{"PNG", "JPEG", "WEBP", "GIF"},
		"max_file_size":     fmt.Sprintf("%dMB", h.cfg.Moderation.MaxImageBytes/(1024*1024)),
		"max_batch_size":    h.service.MaxBatchSize(),
		"message":           "content moderation service is operational",
	})
}
