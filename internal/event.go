package internal

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current canonical event schema version.
const SchemaVersion = 1

// EventKind identifies the type of a canonical event
type EventKind string

const (
	KindSessionStart         EventKind = "session_start"
	KindSessionEnd           EventKind = "session_end"
	KindIntent               EventKind = "intent"
	KindDecision             EventKind = "decision"
	KindAssumption           EventKind = "assumption"
	KindVerification         EventKind = "verification"
	KindFileOp               EventKind = "file_op"
	KindToolCall             EventKind = "tool_call"
	KindArtifactCreated      EventKind = "artifact_created"
	KindTokenUsageCheckpoint EventKind = "token_usage_checkpoint"
	KindNote                 EventKind = "note"
)

// KnownKinds lists every kind the pipeline understands.
var KnownKinds = []EventKind{
	KindSessionStart, KindSessionEnd, KindIntent, KindDecision,
	KindAssumption, KindVerification, KindFileOp, KindToolCall,
	KindArtifactCreated, KindTokenUsageCheckpoint, KindNote,
}

// Visibility controls which audiences see an event
type Visibility string

const (
	VisibilityRaw    Visibility = "raw"
	VisibilityReview Visibility = "review"
	VisibilityDebug  Visibility = "debug"
)

// Actor identifies who produced an event
type Actor struct {
	Type string `json:"type"` // "user", "agent", "tool", "system"
	ID   string `json:"id,omitempty"`
}

// Scope ties an event to an intent, file, or module
type Scope struct {
	IntentID string `json:"intent_id,omitempty"`
	File     string `json:"file,omitempty"`
	Module   string `json:"module,omitempty"`
}

// IsZero reports whether the scope carries no information.
func (s *Scope) IsZero() bool {
	return s == nil || (s.IntentID == "" && s.File == "" && s.Module == "")
}

// CanonicalEvent is the single normalized record all session activity
// is reduced to. Events are immutable once persisted; seq values within
// a session are dense and 1-based, and seq order is authoritative for
// replay (ts order is advisory only).
type CanonicalEvent struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	Seq           int        `json:"seq"`
	TS            time.Time  `json:"ts"`
	Kind          EventKind  `json:"kind"`
	Actor         Actor      `json:"actor"`
	Scope         *Scope     `json:"scope,omitempty"`
	Payload       Payload    `json:"payload"`
	Derived       bool       `json:"derived,omitempty"`
	Confidence    float64    `json:"confidence,omitempty"`
	Visibility    Visibility `json:"visibility,omitempty"`
	SchemaVersion int        `json:"schema_version"`
}

// eventWire mirrors CanonicalEvent with a raw payload so the payload can
// be decoded according to the event kind.
type eventWire struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Seq           int             `json:"seq"`
	TS            time.Time       `json:"ts"`
	Kind          EventKind       `json:"kind"`
	Actor         Actor           `json:"actor"`
	Scope         *Scope          `json:"scope,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Derived       bool            `json:"derived,omitempty"`
	Confidence    float64         `json:"confidence,omitempty"`
	Visibility    Visibility      `json:"visibility,omitempty"`
	SchemaVersion int             `json:"schema_version"`
}

// UnmarshalJSON decodes an event, resolving the payload shape from the kind.
func (e *CanonicalEvent) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	payload, err := DecodePayload(w.Kind, w.Payload)
	if err != nil {
		return err
	}

	e.ID = w.ID
	e.SessionID = w.SessionID
	e.Seq = w.Seq
	e.TS = w.TS
	e.Kind = w.Kind
	e.Actor = w.Actor
	e.Scope = w.Scope
	e.Payload = payload
	e.Derived = w.Derived
	e.Confidence = w.Confidence
	e.Visibility = w.Visibility
	e.SchemaVersion = w.SchemaVersion
	return nil
}

// NewEventID generates an event id tied to its seq position.
func NewEventID(seq int) string {
	return fmt.Sprintf("evt_%d_%s", seq, uuid.NewString()[:8])
}

// NewSessionID synthesizes a fresh session identifier.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("sess_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}

// Validate checks the structural invariants of a single event.
func (e *CanonicalEvent) Validate() error {
	if e.SessionID == "" {
		return &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if e.Seq < 1 {
		return &ValidationError{Field: "seq", Reason: fmt.Sprintf("must be >= 1, got %d", e.Seq)}
	}
	if e.Kind == "" {
		return &ValidationError{Field: "kind", Reason: "must not be empty"}
	}
	if e.Actor.Type == "" {
		return &ValidationError{Field: "actor.type", Reason: "must not be empty"}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be within [0,1]"}
	}
	return nil
}

// SortEventsCanonical orders events by (ts, seq), the order used when a
// merge forces a full rewrite of a session log.
func SortEventsCanonical(events []*CanonicalEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].TS.Equal(events[j].TS) {
			return events[i].TS.Before(events[j].TS)
		}
		return events[i].Seq < events[j].Seq
	})
}

// SortEventsBySeq orders events by seq, the authoritative replay order.
func SortEventsBySeq(events []*CanonicalEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Seq < events[j].Seq
	})
}
