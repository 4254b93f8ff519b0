package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/research"
)

type researchQueryHandler struct {
	logger *logrus.Logger
	agent  *research.Agent
}

func NewResearchQueryHandler(logger *logrus.Logger, agent *research.Agent) Handler {
	return &researchQueryHandler{
		logger: logger,
		agent:  agent,
	}
}

// Handle @Summary Research Query
// @Description Answers a research query; the answer is safety-checked before being returned
// @Tags Research
// @Accept json
// @Produce json
// @Param request body research.Request true "Research query"
// @Success 200 {object} research.Response "Answer with citations and reasoning steps"
// @Failure 400 {object} map[string]interface{} "Invalid query"
// @Router /research/query [post]
func (h *researchQueryHandler) Handle(c *fiber.Ctx) error {
	requestID := uuid.NewString()

	var req research.Request
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("failed to bind research request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	response, err := h.agent.Research(c.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Warn("research query rejected")
		return errorResponse(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"request_id":          requestID,
		"safety_check_passed": response.SafetyCheckPassed,
		"reasoning_steps":     len(response.ReasoningSteps),
	}).Info("research query completed")

	return c.Status(fiber.StatusOK).JSON(response)
}
