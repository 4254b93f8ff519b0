package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/moderation"
)

type batchAnalyzeHandler struct {
	logger  *logrus.Logger
	service *moderation.Service
}

func NewBatchAnalyzeHandler(logger *logrus.Logger, service *moderation.Service) Handler {
	return &batchAnalyzeHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Batch Content Analysis
// @Description Analyzes up to the configured maximum of content items in one request
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body moderation.BatchRequest true "Batch of content items"
// @Success 200 {object} moderation.BatchResult "Per-item verdicts and summary stats"
// @Failure 400 {object} map[string]interface{} "Empty batch or too many items"
// @Router /moderation/batch-analyze [post]
func (h *batchAnalyzeHandler) Handle(c *fiber.Ctx) error {
	requestID := uuid.NewString()

	var req moderation.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("failed to bind batch request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	result, err := h.service.AnalyzeBatch(c.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Warn("batch request rejected")
		return errorResponse(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"request_id":   requestID,
		"total_items":  len(result.Results),
		"safe_items":   result.OverallSafeCount,
		"unsafe_items": result.OverallUnsafeCount,
	}).Info("batch analyzed")

	return c.Status(fiber.StatusOK).JSON(result)
}
