package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moderationhq/modgate/pkg/moderation"
	"github.com/moderationhq/modgate/pkg/moderation/pii"
)

type moderationCategoriesHandler struct{}

func NewModerationCategoriesHandler() Handler {
	return &moderationCategoriesHandler{}
}

// Handle @Summary Get Violation Categories
// @Description Lists every violation category the pipeline can detect
// @Tags Moderation
// @Produce json
// @Success 200 {object} map[string]interface{} "Category catalog"
// @Router /moderation/categories [get]
func (h *moderationCategoriesHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"violation_categories": fiber.Map{
			moderation.CategoryNSFW: fiber.Map{
				"name":        "NSFW/Adult Content",
				"description": "Nudity, sexual content, suggestive poses",
				"applies_to":  []string{"images"},
			},
			moderation.CategoryViolence: fiber.Map{
				"name":        "Violence",
				"description": "Blood, weapons, fighting, gore, harm to people/animals",
				"applies_to":  []string{"images"},
			},
			moderation.CategoryHateSymbols: fiber.Map{
				"name":        "Hate Symbols",
				"description": "Extremist imagery, hate symbols, gang signs",
				"applies_to":  []string{"images"},
			},
			moderation.CategoryToxicity: fiber.Map{
				"name":        "Toxicity",
				"description": "Offensive, rude, or disrespectful language",
				"applies_to":  []string{"text"},
			},
			moderation.CategoryHateSpeech: fiber.Map{
				"name":        "Hate Speech",
				"description": "Content targeting individuals/groups based on identity",
				"applies_to":  []string{"text"},
			},
			moderation.CategoryHarassment: fiber.Map{
				"name":        "Harassment",
				"description": "Threats, intimidation, stalking, bullying",
				"applies_to":  []string{"text"},
			},
			moderation.CategoryPII: fiber.Map{
				"name":        "Personal Information",
				"description": "Phone numbers, emails, addresses, SSNs, credit cards",
				"applies_to":  []string{"text"},
			},
		},
		"risk_levels": fiber.Map{
			string(moderation.RiskLow):      "Content is safe with minimal or no violations",
			string(moderation.RiskMedium):   "Content has minor violations but may be acceptable in context",
			string(moderation.RiskHigh):     "Content has significant violations and should be reviewed",
			string(moderation.RiskCritical): "Content has severe violations and should be blocked",
		},
		"pii_types": pii.Entities(),
	})
}
