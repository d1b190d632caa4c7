package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/agent-audit/internal"
)

func TestSumTokenUsage(t *testing.T) {
	events := []*internal.CanonicalEvent{
		internal.CreateTestEvent("s1", 1, internal.KindIntent, &internal.IntentPayload{Description: "task"}),
		internal.CreateTestEvent("s1", 2, internal.KindTokenUsageCheckpoint, &internal.TokenUsagePayload{
			Usage: &internal.TokenUsage{InputTokens: 100, OutputTokens: 40, Category: "inference"},
		}),
		internal.CreateTestEvent("s1", 3, internal.KindTokenUsageCheckpoint, &internal.TokenUsagePayload{
			Usage: &internal.TokenUsage{InputTokens: 20, OutputTokens: 5, Category: "embedding"},
		}),
	}

	summary := sumTokenUsage(segmentIntents(events))

	assert.Equal(t, 120, summary.Total.InputTokens)
	assert.Equal(t, 45, summary.Total.OutputTokens)
	// TotalTokens falls back to input+output when the reading omits it.
	assert.Equal(t, 165, summary.Total.TotalTokens)

	require.Contains(t, summary.ByCategory, "inference")
	require.Contains(t, summary.ByCategory, "embedding")
	assert.Equal(t, 140, summary.ByCategory["inference"].TotalTokens)
	assert.Equal(t, 25, summary.ByCategory["embedding"].TotalTokens)

	require.Contains(t, summary.ByIntent, events[0].ID)
	assert.Equal(t, 165, summary.ByIntent[events[0].ID].TotalTokens)
}

func TestSumTokenUsage_MissingCategoryDefaultsToInference(t *testing.T) {
	events := []*internal.CanonicalEvent{
		internal.CreateTestEvent("s1", 1, internal.KindTokenUsageCheckpoint, &internal.TokenUsagePayload{
			LLMUsage: &internal.TokenUsage{TotalTokens: 300},
		}),
	}

	summary := sumTokenUsage(segmentIntents(events))
	require.Contains(t, summary.ByCategory, "inference")
	assert.Equal(t, 300, summary.ByCategory["inference"].TotalTokens)
}

func TestSumTokenUsage_PayloadIntentOverridesSegment(t *testing.T) {
	events := []*internal.CanonicalEvent{
		internal.CreateTestEvent("s1", 1, internal.KindIntent, &internal.IntentPayload{Description: "task"}),
		internal.CreateTestEvent("s1", 2, internal.KindTokenUsageCheckpoint, &internal.TokenUsagePayload{
			IntentID: "intent_explicit",
			Usage:    &internal.TokenUsage{TotalTokens: 50},
		}),
	}

	summary := sumTokenUsage(segmentIntents(events))
	require.Contains(t, summary.ByIntent, "intent_explicit")
	assert.NotContains(t, summary.ByIntent, events[0].ID)
}

func TestSumTokenUsage_GenericPayloadCounts(t *testing.T) {
	events := []*internal.CanonicalEvent{
		internal.CreateTestEvent("s1", 1, "vendor_checkpoint", internal.GenericPayload{
			"llm_usage": map[string]interface{}{
				"input_tokens":  float64(70),
				"output_tokens": float64(30),
			},
		}),
	}

	summary := sumTokenUsage(segmentIntents(events))
	assert.Equal(t, 100, summary.Total.TotalTokens)
}

func TestSumTokenUsage_NoReadings(t *testing.T) {
	events := []*internal.CanonicalEvent{
		internal.CreateTestEvent("s1", 1, internal.KindNote, &internal.NotePayload{Text: "hi"}),
	}

	summary := sumTokenUsage(segmentIntents(events))
	assert.Zero(t, summary.Total.TotalTokens)
	assert.Nil(t, summary.ByCategory)
	assert.Nil(t, summary.ByIntent)
}
