package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONReply(t *testing.T) {
	v, err := parseJSONReply("```json\n{\"toxicity\": {\"detected\": true, \"confidence\": 0.7}}\n```")
	require.NoError(t, err)

	signal := parseSignal(v.Get("toxicity"))
	assert.True(t, signal.Flagged)
	assert.True(t, signal.HasConfidence)
	assert.InDelta(t, 0.7, signal.Confidence, 0.001)
}

func TestParseSignalMissingCategory(t *testing.T) {
	v, err := parseJSONReply(`{}`)
	require.NoError(t, err)

	signal := parseSignal(v.Get("harassment"))
	assert.False(t, signal.Flagged)
	assert.False(t, signal.HasConfidence)
}

func TestParseJSONReplyMalformed(t *testing.T) {
	_, err := parseJSONReply("no violations here")
	require.Error(t, err)
}
