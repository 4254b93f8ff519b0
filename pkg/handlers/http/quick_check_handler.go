package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/moderation"
)

type quickCheckRequest struct {
	Text       string `json:"text,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	StrictMode bool   `json:"strict_mode"`
}

type quickCheckHandler struct {
	logger  *logrus.Logger
	service *moderation.Service
}

func NewQuickCheckHandler(logger *logrus.Logger, service *moderation.Service) Handler {
	return &quickCheckHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Quick Content Safety Check
// @Description Fast safety check returning a reduced verdict payload
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Reduced verdict"
// @Failure 400 {object} map[string]interface{} "Neither text nor image_url provided"
// @Router /moderation/quick-check [post]
func (h *quickCheckHandler) Handle(c *fiber.Ctx) error {
	var req quickCheckRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind quick-check request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if req.Text == "" && req.ImageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "either text or image_url must be provided",
		})
	}

	result, err := h.service.Analyze(c.Context(), moderation.AnalyzeRequest{
		Text:       req.Text,
		ImageURL:   req.ImageURL,
		StrictMode: req.StrictMode,
	})
	if err != nil {
		h.logger.WithError(err).Warn("quick-check rejected")
		return errorResponse(c, err)
	}

	confidence := 0.0
	for _, violation := range result.ViolationsFound {
		if violation.Detected && violation.Confidence > confidence {
			confidence = violation.Confidence
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"is_safe":              result.IsSafe,
		"risk_level":           result.OverallRiskLevel,
		"summary":              result.Summary,
		"violation_categories": result.ViolationCategories,
		"confidence":           confidence,
		"processing_time":      result.ProcessingTime,
	})
}
