package internal

import (
	"encoding/json"
	"fmt"
)

// Payload is the kind-specific body of a canonical event. Each event kind
// has one payload shape; unknown kinds fall back to GenericPayload.
type Payload interface {
	payloadKind() EventKind
}

// SessionStartPayload opens a session
type SessionStartPayload struct {
	UserPrompt string `json:"user_prompt,omitempty"`
	Goal       string `json:"goal,omitempty"`
	Repo       string `json:"repo,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Source     string `json:"source,omitempty"`
}

// SessionEndPayload closes a session
type SessionEndPayload struct {
	Outcome string `json:"outcome,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// IntentPayload declares a unit of work
type IntentPayload struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// DecisionPayload records a choice the agent made
type DecisionPayload struct {
	Summary      string   `json:"summary"`
	Rationale    string   `json:"rationale,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// AssumptionPayload records something taken as true without proof
type AssumptionPayload struct {
	Statement string `json:"statement"`
	Resolved  bool   `json:"resolved,omitempty"`
}

// VerificationPayload records a check and its result
type VerificationPayload struct {
	Method string `json:"method,omitempty"` // "test", "build", "lint", "manual"
	Result string `json:"result"`           // "pass", "fail", "skipped"
	Detail string `json:"detail,omitempty"`
}

// FileOpPayload records a file mutation
type FileOpPayload struct {
	Op           string `json:"op"` // "create", "edit", "delete", "rename"
	Path         string `json:"path"`
	NewPath      string `json:"new_path,omitempty"`
	LinesChanged int    `json:"lines_changed,omitempty"`
	Diff         string `json:"diff,omitempty"`
}

// ToolCallPayload records an invocation of an external tool
type ToolCallPayload struct {
	Action   string `json:"action"`
	Target   string `json:"target,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Output   string `json:"output,omitempty"`
}

// ArtifactPayload records a produced artifact (report, doc, test file)
type ArtifactPayload struct {
	ArtifactType string `json:"artifact_type"`
	IntentID     string `json:"intent_id,omitempty"`
	Text         string `json:"text,omitempty"`
	Path         string `json:"path,omitempty"`
}

// TokenUsage is a single usage reading
type TokenUsage struct {
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	TotalTokens  int    `json:"total_tokens,omitempty"`
	Category     string `json:"category,omitempty"` // "inference", "embedding", ...
	Model        string `json:"model,omitempty"`
}

// TokenUsagePayload snapshots cumulative token consumption
type TokenUsagePayload struct {
	IntentID string      `json:"intent_id,omitempty"`
	Usage    *TokenUsage `json:"usage,omitempty"`
	LLMUsage *TokenUsage `json:"llm_usage,omitempty"`
}

// Reading returns whichever usage object is populated.
func (p *TokenUsagePayload) Reading() *TokenUsage {
	if p.Usage != nil {
		return p.Usage
	}
	return p.LLMUsage
}

// NotePayload carries free-form annotation text
type NotePayload struct {
	Text string `json:"text"`
}

// GenericPayload preserves payloads of kinds the decoder does not know.
type GenericPayload map[string]interface{}

func (SessionStartPayload) payloadKind() EventKind { return KindSessionStart }
func (SessionEndPayload) payloadKind() EventKind   { return KindSessionEnd }
func (IntentPayload) payloadKind() EventKind       { return KindIntent }
func (DecisionPayload) payloadKind() EventKind     { return KindDecision }
func (AssumptionPayload) payloadKind() EventKind   { return KindAssumption }
func (VerificationPayload) payloadKind() EventKind { return KindVerification }
func (FileOpPayload) payloadKind() EventKind       { return KindFileOp }
func (ToolCallPayload) payloadKind() EventKind     { return KindToolCall }
func (ArtifactPayload) payloadKind() EventKind     { return KindArtifactCreated }
func (TokenUsagePayload) payloadKind() EventKind   { return KindTokenUsageCheckpoint }
func (NotePayload) payloadKind() EventKind         { return KindNote }
func (GenericPayload) payloadKind() EventKind      { return "" }

// DecodePayload parses a raw payload object into the typed shape for the
// given kind. Unknown kinds are preserved as GenericPayload rather than
// rejected, so logs written by newer schema versions still load.
func DecodePayload(kind EventKind, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	decode := func(v Payload) (Payload, error) {
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, &ValidationError{
				Field:  "payload",
				Reason: fmt.Sprintf("malformed %s payload: %v", kind, err),
			}
		}
		return v, nil
	}

	switch kind {
	case KindSessionStart:
		return decode(&SessionStartPayload{})
	case KindSessionEnd:
		return decode(&SessionEndPayload{})
	case KindIntent:
		return decode(&IntentPayload{})
	case KindDecision:
		return decode(&DecisionPayload{})
	case KindAssumption:
		return decode(&AssumptionPayload{})
	case KindVerification:
		return decode(&VerificationPayload{})
	case KindFileOp:
		return decode(&FileOpPayload{})
	case KindToolCall:
		return decode(&ToolCallPayload{})
	case KindArtifactCreated:
		return decode(&ArtifactPayload{})
	case KindTokenUsageCheckpoint:
		return decode(&TokenUsagePayload{})
	case KindNote:
		return decode(&NotePayload{})
	default:
		var generic GenericPayload
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, &ValidationError{
				Field:  "payload",
				Reason: fmt.Sprintf("malformed payload for kind %q: %v", kind, err),
			}
		}
		return generic, nil
	}
}

// PayloadUsage extracts a token usage reading from any payload that carries
// one. Adapters sometimes attach usage objects to generic payloads, so the
// map shape is handled too.
func PayloadUsage(p Payload) *TokenUsage {
	switch v := p.(type) {
	case *TokenUsagePayload:
		return v.Reading()
	case GenericPayload:
		for _, key := range []string{"usage", "llm_usage"} {
			obj, ok := v[key].(map[string]interface{})
			if !ok {
				continue
			}
			data, err := json.Marshal(obj)
			if err != nil {
				continue
			}
			var usage TokenUsage
			if err := json.Unmarshal(data, &usage); err != nil {
				continue
			}
			return &usage
		}
	}
	return nil
}
