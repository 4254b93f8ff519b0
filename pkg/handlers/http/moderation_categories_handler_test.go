package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationCategoriesHandler(t *testing.T) {
	handler := NewModerationCategoriesHandler()
	app := fiber.New()
	app.Get("/moderation/categories", handler.Handle)

	req := httptest.NewRequest("GET", "/moderation/categories", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	categories, ok := payload["violation_categories"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, categories, 7)
	for _, name := range []string{"nsfw", "violence", "hate_symbols", "toxicity", "hate_speech", "harassment", "pii"} {
		assert.Contains(t, categories, name)
	}

	nsfw, ok := categories["nsfw"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"images"}, nsfw["applies_to"])

	riskLevels, ok := payload["risk_levels"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, riskLevels, 4)
	assert.Contains(t, riskLevels, "critical")

	piiTypes, ok := payload["pii_types"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, piiTypes, "email")
	assert.Contains(t, piiTypes, "credit_card")
}
