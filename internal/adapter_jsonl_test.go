package internal

import (
	"strings"
	"testing"
	"time"
)

func TestJSONLAdapter_ParseWithHeader(t *testing.T) {
	raw := []byte(`{"session":{"session_id":"s1","user_prompt":"Fix login bug","goal":"auth works","started_at":"2025-06-01T12:00:00Z","source":"capture"}}
{"kind":"intent","ts":"2025-06-01T12:01:00Z","actor":{"type":"agent"},"payload":{"description":"patch it"}}
{"kind":"verification","ts":"2025-06-01T12:10:00Z","actor":{"type":"tool"},"payload":{"method":"test","result":"pass"}}
`)

	adapter := &JSONLAdapter{}
	session, err := adapter.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if session.SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", session.SessionID)
	}
	if session.UserPrompt != "Fix login bug" {
		t.Errorf("UserPrompt = %q, want the header prompt", session.UserPrompt)
	}
	if session.Source != "capture" {
		t.Errorf("Source = %q, want capture from the header", session.Source)
	}
	if session.StartedAt == nil || !session.StartedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("StartedAt = %v, want the header timestamp", session.StartedAt)
	}
	if len(session.Events) != 2 {
		t.Fatalf("parsed %d events, want 2", len(session.Events))
	}
	if _, ok := session.Events[0].Payload.(*IntentPayload); !ok {
		t.Errorf("Events[0].Payload type = %T, want *IntentPayload", session.Events[0].Payload)
	}
	if _, ok := session.Events[1].Payload.(*VerificationPayload); !ok {
		t.Errorf("Events[1].Payload type = %T, want *VerificationPayload", session.Events[1].Payload)
	}
}

func TestJSONLAdapter_ParseWithoutHeader(t *testing.T) {
	raw := []byte(`{"kind":"note","ts":"2025-06-01T12:00:00Z","actor":{"type":"agent"},"payload":{"text":"hello"}}
`)

	adapter := &JSONLAdapter{}
	session, err := adapter.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if session.Source != "agent-jsonl" {
		t.Errorf("Source = %q, want the adapter default", session.Source)
	}
	if len(session.Events) != 1 {
		t.Errorf("parsed %d events, want 1", len(session.Events))
	}
}

func TestJSONLAdapter_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "empty input",
			raw:     "",
			wantErr: "no events",
		},
		{
			name:    "header only",
			raw:     `{"session":{"user_prompt":"hi"}}` + "\n",
			wantErr: "no events",
		},
		{
			name: "malformed line",
			raw: `{"kind":"note","actor":{"type":"agent"},"payload":{"text":"ok"}}
{broken`,
			wantErr: "line 2",
		},
		{
			name:    "missing kind",
			raw:     `{"actor":{"type":"agent"},"payload":{"text":"ok"}}` + "\n",
			wantErr: "missing event kind",
		},
	}

	adapter := &JSONLAdapter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Parse([]byte(tt.raw))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestJSONLAdapter_BlankLinesIgnored(t *testing.T) {
	raw := []byte(`{"session":{"user_prompt":"hi"}}

{"kind":"note","actor":{"type":"agent"},"payload":{"text":"ok"}}

`)
	session, err := (&JSONLAdapter{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(session.Events) != 1 {
		t.Errorf("parsed %d events, want 1", len(session.Events))
	}
}
