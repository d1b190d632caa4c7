package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SessionContext is the mutable cursor for one live recording: the
// session being written and the currently active intent. It is an
// explicit value passed to every recording call, persisted alongside
// the logs so a new process can pick up where the last one stopped.
// The persisted log stays the source of truth; the cursor is advisory
// and can always be rebuilt from disk.
type SessionContext struct {
	SessionID      string    `json:"session_id"`
	ActiveIntentID string    `json:"active_intent_id,omitempty"`
	NextSeq        int       `json:"next_seq"`
	StartedAt      time.Time `json:"started_at"`
}

// SessionStore owns the single active session during live recording.
// One active session per process; starting another while one is live is
// an error, never an interleave.
type SessionStore struct {
	cfg *Config
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(cfg *Config) *SessionStore {
	return &SessionStore{cfg: cfg}
}

func (s *SessionStore) contextPath() string {
	return filepath.Join(s.cfg.SessionsDir, "active.json")
}

// LoadActive returns the persisted active session context, or nil if no
// recording is in progress.
func (s *SessionStore) LoadActive() (*SessionContext, error) {
	data, err := os.ReadFile(s.contextPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: s.contextPath(), Err: err}
	}
	var ctx SessionContext
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, &ParseError{Path: s.contextPath(), Line: 1, Err: err}
	}
	return &ctx, nil
}

func (s *SessionStore) saveContext(ctx *SessionContext) error {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.contextPath(), data, 0644); err != nil {
		return &IOError{Op: "write", Path: s.contextPath(), Err: err}
	}
	return nil
}

// StartSession begins a new recording. Fails with InvalidStateError if
// another session is already active; resume that one or end it first.
func (s *SessionStore) StartSession(userPrompt, goal string, ts time.Time) (*SessionContext, error) {
	if err := s.cfg.EnsureSessionsDir(); err != nil {
		return nil, err
	}

	active, err := s.LoadActive()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &InvalidStateError{
			SessionID: active.SessionID,
			Reason:    "a session is already active; end or resume it",
		}
	}

	ctx := &SessionContext{
		SessionID: NewSessionID(ts),
		NextSeq:   1,
		StartedAt: ts,
	}

	start := &CanonicalEvent{
		SessionID: ctx.SessionID,
		Kind:      KindSessionStart,
		TS:        ts.UTC(),
		Actor:     Actor{Type: "user"},
		Payload: &SessionStartPayload{
			UserPrompt: userPrompt,
			Goal:       goal,
			Source:     "recorder",
		},
		SchemaVersion: SchemaVersion,
	}
	if err := s.PersistEvent(ctx, start); err != nil {
		return nil, err
	}

	LogInfo("Started session %s", ctx.SessionID)
	return ctx, nil
}

// ResumeSession rebuilds a recording cursor for an existing session from
// its persisted log.
func (s *SessionStore) ResumeSession(sessionID string) (*SessionContext, error) {
	path := SessionLogPath(s.cfg.SessionsDir, sessionID)
	events, err := ReadSessionLog(path)
	if err != nil {
		return nil, err
	}

	ctx := &SessionContext{SessionID: sessionID, NextSeq: 1}
	for _, event := range events {
		if event.Seq >= ctx.NextSeq {
			ctx.NextSeq = event.Seq + 1
		}
		switch event.Kind {
		case KindSessionStart:
			ctx.StartedAt = event.TS
		case KindSessionEnd:
			return nil, &InvalidStateError{SessionID: sessionID, Reason: "session already ended"}
		case KindIntent:
			ctx.ActiveIntentID = event.ID
		}
	}

	if err := s.saveContext(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

// CreateEvent mints the next event for the live session. The caller
// persists it with PersistEvent; until then nothing is on disk.
func (s *SessionStore) CreateEvent(ctx *SessionContext, kind EventKind, payload Payload, ts time.Time) (*CanonicalEvent, error) {
	if ctx == nil {
		return nil, &NoActiveSessionError{Op: "create_event"}
	}
	if payload == nil {
		payload = GenericPayload{}
	}

	event := &CanonicalEvent{
		ID:            NewEventID(ctx.NextSeq),
		SessionID:     ctx.SessionID,
		Seq:           ctx.NextSeq,
		TS:            ts.UTC(),
		Kind:          kind,
		Actor:         Actor{Type: "agent"},
		Payload:       payload,
		SchemaVersion: SchemaVersion,
	}
	if ctx.ActiveIntentID != "" && kind != KindIntent {
		event.Scope = &Scope{IntentID: ctx.ActiveIntentID}
	}
	return event, nil
}

// PersistEvent appends one event to the session log and advances the
// cursor. I/O failures surface; the event is never silently dropped.
func (s *SessionStore) PersistEvent(ctx *SessionContext, event *CanonicalEvent) error {
	if ctx == nil {
		return &NoActiveSessionError{Op: "persist_event"}
	}
	if event.Seq == 0 {
		event.Seq = ctx.NextSeq
		event.ID = NewEventID(event.Seq)
	}
	if err := event.Validate(); err != nil {
		return err
	}

	path := SessionLogPath(s.cfg.SessionsDir, ctx.SessionID)
	if err := AppendEvents(path, []*CanonicalEvent{event}); err != nil {
		return err
	}

	ctx.NextSeq = event.Seq + 1
	if event.Kind == KindIntent {
		ctx.ActiveIntentID = event.ID
	}
	return s.saveContext(ctx)
}

// EndActiveSession writes the terminal session_end event and clears the
// cursor. Ending twice is a caller error.
func (s *SessionStore) EndActiveSession(ctx *SessionContext, ts time.Time) error {
	if ctx == nil {
		return &NoActiveSessionError{Op: "end_session"}
	}

	path := SessionLogPath(s.cfg.SessionsDir, ctx.SessionID)
	if SessionLogExists(s.cfg.SessionsDir, ctx.SessionID) {
		events, err := ReadSessionLog(path)
		if err != nil {
			return err
		}
		for _, event := range events {
			if event.Kind == KindSessionEnd {
				return &InvalidStateError{SessionID: ctx.SessionID, Reason: "session already ended"}
			}
		}
	}

	end := &CanonicalEvent{
		ID:            NewEventID(ctx.NextSeq),
		SessionID:     ctx.SessionID,
		Seq:           ctx.NextSeq,
		TS:            ts.UTC(),
		Kind:          KindSessionEnd,
		Actor:         Actor{Type: "user"},
		Payload:       &SessionEndPayload{},
		SchemaVersion: SchemaVersion,
	}
	if err := AppendEvents(path, []*CanonicalEvent{end}); err != nil {
		return err
	}

	if err := os.Remove(s.contextPath()); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Path: s.contextPath(), Err: err}
	}
	LogInfo("Ended session %s (%d events)", ctx.SessionID, end.Seq)
	return nil
}
