// Package audit derives reviewer artifacts from a canonical session
// log: intents, decisions, assumptions, verifications, revisions,
// impacts, risks, hotspots, and token usage. Every derivation is a pure
// function of the sorted event list, so a normalization run can always
// be repeated from scratch with the same result.
package audit

import (
	"time"

	"github.com/iksnae/agent-audit/internal"
)

// IntentStatus classifies how an intent's work ended
type IntentStatus string

const (
	IntentCompleted IntentStatus = "completed"
	IntentAbandoned IntentStatus = "abandoned"
	IntentPartial   IntentStatus = "partial"
)

// SyntheticIntentID labels the fallback intent that owns events recorded
// before any explicit intent boundary.
const SyntheticIntentID = "intent_synthetic"

// IntentArtifact is one segmented unit of work.
type IntentArtifact struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      IntentStatus `json:"status"`
	Synthetic   bool         `json:"synthetic,omitempty"`
	StartSeq    int          `json:"start_seq"`
	EndSeq      int          `json:"end_seq"`
	EventCount  int          `json:"event_count"`
}

// DecisionArtifact projects one decision event.
type DecisionArtifact struct {
	EventID      string    `json:"event_id"`
	IntentID     string    `json:"intent_id,omitempty"`
	TS           time.Time `json:"ts"`
	Summary      string    `json:"summary"`
	Rationale    string    `json:"rationale,omitempty"`
	Alternatives []string  `json:"alternatives,omitempty"`
}

// AssumptionArtifact projects one assumption event.
type AssumptionArtifact struct {
	EventID   string    `json:"event_id"`
	IntentID  string    `json:"intent_id,omitempty"`
	TS        time.Time `json:"ts"`
	Statement string    `json:"statement"`
	Resolved  bool      `json:"resolved"`
}

// VerificationArtifact projects one verification event.
type VerificationArtifact struct {
	EventID  string    `json:"event_id"`
	IntentID string    `json:"intent_id,omitempty"`
	TS       time.Time `json:"ts"`
	Method   string    `json:"method,omitempty"`
	Result   string    `json:"result"`
	Detail   string    `json:"detail,omitempty"`
}

// RevisionType names a detected risky editing pattern
type RevisionType string

const (
	RevisionRepeatFileEdits  RevisionType = "repeat_file_edits"
	RevisionCreateThenDelete RevisionType = "create_then_delete"
	RevisionLargeAfterRecent RevisionType = "large_change_after_recent_change"
	RevisionIntentSuperseded RevisionType = "intent_superseded"
)

// RevisionArtifact is one detected risky editing pattern.
type RevisionArtifact struct {
	Type     RevisionType `json:"type"`
	Path     string       `json:"path,omitempty"`
	IntentID string       `json:"intent_id,omitempty"`
	Count    int          `json:"count,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

// BlastRadius classifies the breadth of a set of changes
type BlastRadius string

const (
	BlastSmall  BlastRadius = "small"
	BlastMedium BlastRadius = "medium"
	BlastLarge  BlastRadius = "large"
)

// ImpactArtifact aggregates the touched surface for one intent, or for
// the whole session when IntentID is empty.
type ImpactArtifact struct {
	IntentID    string      `json:"intent_id,omitempty"`
	Files       []string    `json:"files,omitempty"`
	Modules     []string    `json:"modules,omitempty"`
	BlastRadius BlastRadius `json:"blast_radius"`
	Signals     []string    `json:"signals,omitempty"`
}

// RiskArtifact is one scored reviewer concern.
type RiskArtifact struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Severity float64 `json:"severity"` // 0-1
	Summary  string  `json:"summary"`
	Path     string  `json:"path,omitempty"`
	IntentID string  `json:"intent_id,omitempty"`
}

// HotspotArtifact is a file ranked for reviewer attention.
type HotspotArtifact struct {
	Path      string   `json:"path"`
	EditCount int      `json:"edit_count"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons,omitempty"`
}

// TokenTotals accumulates token counts.
type TokenTotals struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

func (t *TokenTotals) add(u *internal.TokenUsage) {
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	total := u.TotalTokens
	if total == 0 {
		total = u.InputTokens + u.OutputTokens
	}
	t.TotalTokens += total
}

// TokenUsageSummary groups token consumption by category and intent.
type TokenUsageSummary struct {
	Total      TokenTotals            `json:"total"`
	ByCategory map[string]TokenTotals `json:"by_category,omitempty"`
	ByIntent   map[string]TokenTotals `json:"by_intent,omitempty"`
}

// SessionMetadata summarizes the session for reviewers.
type SessionMetadata struct {
	SessionID     string    `json:"session_id"`
	Goal          string    `json:"goal,omitempty"`
	UserPrompt    string    `json:"user_prompt,omitempty"`
	Outcome       string    `json:"outcome,omitempty"`
	Repo          string    `json:"repo,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	EndedAt       time.Time `json:"ended_at,omitempty"`
	EventCount    int       `json:"event_count"`
	SchemaVersion int       `json:"schema_version"`
}

// SessionNormalized is the full reviewer projection of one session.
// It is rebuilt from scratch on every normalization run, never patched.
type SessionNormalized struct {
	Metadata      SessionMetadata           `json:"metadata"`
	Intents       []IntentArtifact          `json:"intents"`
	Decisions     []DecisionArtifact        `json:"decisions"`
	Assumptions   []AssumptionArtifact      `json:"assumptions"`
	Verifications []VerificationArtifact    `json:"verifications"`
	Revisions     []RevisionArtifact        `json:"revisions"`
	Impacts       []ImpactArtifact          `json:"impacts"`
	Risks         []RiskArtifact            `json:"risks"`
	Hotspots      []HotspotArtifact         `json:"hotspots"`
	TokenUsage    TokenUsageSummary         `json:"token_usage"`
	Events        []*internal.CanonicalEvent `json:"events"`
}
