package internal

import (
	"time"
)

// testBaseTime anchors deterministic event timestamps in tests.
var testBaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// CreateTestEvent creates a canonical event with sane defaults
func CreateTestEvent(sessionID string, seq int, kind EventKind, payload Payload) *CanonicalEvent {
	if payload == nil {
		payload = GenericPayload{}
	}
	return &CanonicalEvent{
		ID:            NewEventID(seq),
		SessionID:     sessionID,
		Seq:           seq,
		TS:            testBaseTime.Add(time.Duration(seq) * time.Minute),
		Kind:          kind,
		Actor:         Actor{Type: "agent"},
		Payload:       payload,
		SchemaVersion: SchemaVersion,
	}
}

// CreateTestSessionEvents creates a minimal complete session log:
// session_start, an intent, a file edit, and a passing verification.
func CreateTestSessionEvents(sessionID, prompt string) []*CanonicalEvent {
	start := CreateTestEvent(sessionID, 1, KindSessionStart, &SessionStartPayload{
		UserPrompt: prompt,
		Source:     "test",
	})
	intent := CreateTestEvent(sessionID, 2, KindIntent, &IntentPayload{
		Description: prompt,
	})
	edit := CreateTestEvent(sessionID, 3, KindFileOp, &FileOpPayload{
		Op:           "edit",
		Path:         "internal/auth.go",
		LinesChanged: 12,
	})
	verify := CreateTestEvent(sessionID, 4, KindVerification, &VerificationPayload{
		Method: "test",
		Result: "pass",
	})
	return []*CanonicalEvent{start, intent, edit, verify}
}

// CreateTestAdaptedSession creates an adapted session with custom events
func CreateTestAdaptedSession(prompt string, events []AdaptedEvent) *AdaptedSession {
	started := testBaseTime
	return &AdaptedSession{
		UserPrompt: prompt,
		StartedAt:  &started,
		Events:     events,
		Source:     "test",
	}
}

// CreateTestAdaptedEvent creates an adapted event at an offset from the
// base test time
func CreateTestAdaptedEvent(kind EventKind, offset time.Duration, payload Payload) AdaptedEvent {
	ts := testBaseTime.Add(offset)
	return AdaptedEvent{
		Kind:    kind,
		TS:      &ts,
		Actor:   Actor{Type: "agent"},
		Payload: payload,
	}
}
