package internal

import (
	"errors"
	"testing"
	"time"
)

func TestAdapterRegistry(t *testing.T) {
	registry := NewAdapterRegistry()

	names := registry.Names()
	want := []string{"agent-jsonl", "cursor"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	adapter, err := registry.Lookup("cursor")
	if err != nil {
		t.Fatalf("Lookup(cursor) failed: %v", err)
	}
	if adapter.Name() != "cursor" {
		t.Errorf("adapter.Name() = %s, want cursor", adapter.Name())
	}

	_, err = registry.Lookup("slack")
	if err == nil {
		t.Fatal("Lookup(slack) expected error, got nil")
	}
	var uErr *UnsupportedAdapterError
	if !errors.As(err, &uErr) {
		t.Errorf("error type = %T, want *UnsupportedAdapterError", err)
	}
}

func TestAdaptedSession_RepresentativePrompt(t *testing.T) {
	tests := []struct {
		name    string
		session *AdaptedSession
		want    string
	}{
		{
			name:    "user prompt wins",
			session: &AdaptedSession{UserPrompt: "Fix the Login Bug!", Goal: "something else"},
			want:    "fix the login bug",
		},
		{
			name: "first intent description next",
			session: &AdaptedSession{
				Goal: "auth works",
				Events: []AdaptedEvent{
					{Kind: KindNote, Payload: &NotePayload{Text: "hi"}},
					{Kind: KindIntent, Payload: &IntentPayload{Description: "Patch the token check"}},
				},
			},
			want: "patch the token check",
		},
		{
			name: "intent title when description empty",
			session: &AdaptedSession{
				Events: []AdaptedEvent{
					{Kind: KindIntent, Payload: &IntentPayload{Title: "Token Fix"}},
				},
			},
			want: "token fix",
		},
		{
			name:    "goal as last resort",
			session: &AdaptedSession{Goal: "Ship v2"},
			want:    "ship v2",
		},
		{
			name:    "nothing usable",
			session: &AdaptedSession{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.RepresentativePrompt(); got != tt.want {
				t.Errorf("RepresentativePrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdaptedSession_EarliestTimestamp(t *testing.T) {
	early := testBaseTime
	later := testBaseTime.Add(time.Hour)

	t.Run("started_at wins when earliest", func(t *testing.T) {
		s := CreateTestAdaptedSession("p", []AdaptedEvent{
			CreateTestAdaptedEvent(KindNote, time.Hour, &NotePayload{Text: "x"}),
		})
		if got := s.EarliestTimestamp(); !got.Equal(early) {
			t.Errorf("EarliestTimestamp() = %v, want %v", got, early)
		}
	})

	t.Run("event timestamp wins when earlier than started_at", func(t *testing.T) {
		s := &AdaptedSession{StartedAt: &later}
		ts := early
		s.Events = []AdaptedEvent{{Kind: KindNote, TS: &ts, Payload: &NotePayload{Text: "x"}}}
		if got := s.EarliestTimestamp(); !got.Equal(early) {
			t.Errorf("EarliestTimestamp() = %v, want %v", got, early)
		}
	})

	t.Run("no timestamps at all", func(t *testing.T) {
		s := &AdaptedSession{Events: []AdaptedEvent{{Kind: KindNote, Payload: &NotePayload{Text: "x"}}}}
		if got := s.EarliestTimestamp(); !got.IsZero() {
			t.Errorf("EarliestTimestamp() = %v, want zero", got)
		}
	})
}
