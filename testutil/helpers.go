package testutil

import (
	"encoding/json"
	"testing"

	"github.com/iksnae/agent-audit/internal"
)

// TestConfig returns a Config rooted in a per-test temp directory.
func TestConfig(t *testing.T) *internal.Config {
	t.Helper()
	cfg := internal.DefaultConfig()
	cfg.SessionsDir = t.TempDir()
	return cfg
}

// JSONMarshal marshals a value to JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}

// JSONUnmarshal unmarshals JSON for testing
func JSONUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
}

// JSONLLines encodes adapted events as agent-jsonl input with a header.
func JSONLLines(t *testing.T, session *internal.AdaptedSession) []byte {
	t.Helper()
	var out []byte
	header := map[string]interface{}{"session": map[string]interface{}{
		"session_id":  session.SessionID,
		"user_prompt": session.UserPrompt,
		"goal":        session.Goal,
		"source":      session.Source,
	}}
	out = append(out, JSONMarshal(t, header)...)
	out = append(out, '\n')
	for i := range session.Events {
		out = append(out, JSONMarshal(t, &session.Events[i])...)
		out = append(out, '\n')
	}
	return out
}
