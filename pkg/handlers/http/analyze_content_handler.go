package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/domain"
	"github.com/moderationhq/modgate/pkg/moderation"
)

type analyzeContentHandler struct {
	logger  *logrus.Logger
	service *moderation.Service
}

func NewAnalyzeContentHandler(logger *logrus.Logger, service *moderation.Service) Handler {
	return &analyzeContentHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Analyze Content for Policy Violations
// @Description Analyzes text and/or image content for safety and policy compliance
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body moderation.AnalyzeRequest true "Content to analyze"
// @Success 200 {object} moderation.ModerationResult "Moderation verdict"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 502 {object} map[string]interface{} "Remote image fetch failed"
// @Router /moderation/analyze [post]
func (h *analyzeContentHandler) Handle(c *fiber.Ctx) error {
	requestID := uuid.NewString()

	var req moderation.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("failed to bind analyze request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	result, err := h.service.Analyze(c.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Warn("analyze request rejected")
		return errorResponse(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"is_safe":    result.IsSafe,
		"risk_level": result.OverallRiskLevel,
	}).Info("content analyzed")

	return c.Status(fiber.StatusOK).JSON(result)
}

// errorResponse maps domain errors onto HTTP statuses. Analyzer
// failures never reach here; they degrade the verdict instead.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.IsBatchTooLargeError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.IsFetchError(err):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to analyze content"})
	}
}
