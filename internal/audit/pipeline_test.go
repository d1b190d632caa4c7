package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/agent-audit/internal"
)

func sessionFixture(t *testing.T) []*internal.CanonicalEvent {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mint := func(seq int, kind internal.EventKind, payload internal.Payload) *internal.CanonicalEvent {
		event := internal.CreateTestEvent("sess_demo", seq, kind, payload)
		event.TS = base.Add(time.Duration(seq) * time.Minute)
		return event
	}

	return []*internal.CanonicalEvent{
		mint(1, internal.KindSessionStart, &internal.SessionStartPayload{
			UserPrompt: "Fix login bug",
			Goal:       "auth works again",
			Repo:       "example/app",
			Branch:     "fix/login",
		}),
		mint(2, internal.KindIntent, &internal.IntentPayload{Description: "patch the token check"}),
		mint(3, internal.KindDecision, &internal.DecisionPayload{Summary: "keep jwt", Rationale: "smallest change"}),
		mint(4, internal.KindAssumption, &internal.AssumptionPayload{Statement: "refresh flow unaffected"}),
		mint(5, internal.KindFileOp, &internal.FileOpPayload{Op: "edit", Path: "internal/auth.go", LinesChanged: 14}),
		mint(6, internal.KindVerification, &internal.VerificationPayload{Method: "test", Result: "pass"}),
		mint(7, internal.KindTokenUsageCheckpoint, &internal.TokenUsagePayload{
			Usage: &internal.TokenUsage{InputTokens: 900, OutputTokens: 200},
		}),
		mint(8, internal.KindSessionEnd, &internal.SessionEndPayload{Outcome: "success"}),
	}
}

func TestPipeline_Normalize(t *testing.T) {
	cfg := internal.DefaultConfig()
	events := sessionFixture(t)

	normalized := NewPipeline(cfg, nil).Normalize("sess_demo", events)

	meta := normalized.Metadata
	assert.Equal(t, "sess_demo", meta.SessionID)
	assert.Equal(t, "Fix login bug", meta.UserPrompt)
	assert.Equal(t, "auth works again", meta.Goal)
	assert.Equal(t, "success", meta.Outcome)
	assert.Equal(t, "example/app", meta.Repo)
	assert.Equal(t, 8, meta.EventCount)
	assert.Equal(t, events[0].TS, meta.StartedAt)
	assert.Equal(t, events[7].TS, meta.EndedAt)

	require.Len(t, normalized.Intents, 2)
	assert.True(t, normalized.Intents[0].Synthetic, "pre-intent events own a synthetic segment")
	assert.Equal(t, IntentCompleted, normalized.Intents[1].Status)

	require.Len(t, normalized.Decisions, 1)
	assert.Equal(t, "keep jwt", normalized.Decisions[0].Summary)

	require.Len(t, normalized.Assumptions, 1)
	require.Len(t, normalized.Verifications, 1)
	assert.Equal(t, "pass", normalized.Verifications[0].Result)

	// One unresolved assumption surfaces as the only risk.
	require.Len(t, normalized.Risks, 1)
	assert.Equal(t, "unresolved_assumption", normalized.Risks[0].Category)

	assert.Equal(t, 1100, normalized.TokenUsage.Total.TotalTokens)

	// Per-intent impact plus the session-wide one.
	require.Len(t, normalized.Impacts, 2)
	assert.Equal(t, "", normalized.Impacts[1].IntentID)
}

func TestPipeline_NormalizeIsRepeatable(t *testing.T) {
	cfg := internal.DefaultConfig()
	events := sessionFixture(t)
	pipeline := NewPipeline(cfg, nil)

	first := pipeline.Normalize("sess_demo", events)
	second := pipeline.Normalize("sess_demo", events)

	assert.Equal(t, first.Metadata, second.Metadata)
	assert.Equal(t, first.Intents, second.Intents)
	assert.Equal(t, first.Risks, second.Risks)
	assert.Equal(t, first.TokenUsage, second.TokenUsage)
}

func TestPipeline_NormalizeSortsBySeq(t *testing.T) {
	cfg := internal.DefaultConfig()
	events := sessionFixture(t)
	// Shuffle the input; seq order is authoritative for replay.
	shuffled := []*internal.CanonicalEvent{events[4], events[0], events[7], events[2], events[1], events[5], events[3], events[6]}

	normalized := NewPipeline(cfg, nil).Normalize("sess_demo", shuffled)

	for i, event := range normalized.Events {
		assert.Equal(t, i+1, event.Seq, "events must come back in seq order")
	}
	require.Len(t, normalized.Intents, 2)
	assert.Equal(t, IntentCompleted, normalized.Intents[1].Status)
}

func TestPipeline_CustomScorer(t *testing.T) {
	cfg := internal.DefaultConfig()
	scorer := &stubScorer{}

	normalized := NewPipeline(cfg, scorer).Normalize("sess_demo", sessionFixture(t))

	assert.True(t, scorer.called)
	require.Len(t, normalized.Risks, 1)
	assert.Equal(t, "custom", normalized.Risks[0].Category)
	// The scorer sees artifacts, never raw events.
	assert.NotEmpty(t, scorer.input.Verifications)
}

func TestPipeline_NormalizeSession(t *testing.T) {
	cfg := internal.DefaultConfig()
	cfg.SessionsDir = t.TempDir()

	events := sessionFixture(t)
	path := internal.SessionLogPath(cfg.SessionsDir, "sess_demo")
	require.NoError(t, internal.AppendEvents(path, events))

	normalized, err := NewPipeline(cfg, nil).NormalizeSession("sess_demo")
	require.NoError(t, err)
	assert.Equal(t, 8, normalized.Metadata.EventCount)
}

func TestPipeline_NormalizeSession_MissingLog(t *testing.T) {
	cfg := internal.DefaultConfig()
	cfg.SessionsDir = t.TempDir()

	_, err := NewPipeline(cfg, nil).NormalizeSession("sess_ghost")
	require.Error(t, err)
	var ioErr *internal.IOError
	assert.True(t, errors.As(err, &ioErr))
}
