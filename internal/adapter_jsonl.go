package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSONLAdapter parses the neutral agent-jsonl capture format: one
// AdaptedEvent object per line, optionally preceded by a header line
// carrying session metadata under a "session" key.
//
//	{"session": {"session_id": "s1", "user_prompt": "...", "source": "..."}}
//	{"kind": "intent", "ts": "...", "actor": {"type": "agent"}, "payload": {...}}
type JSONLAdapter struct{}

// jsonlHeader is the optional first line of an agent-jsonl capture.
type jsonlHeader struct {
	Session *struct {
		SessionID  string     `json:"session_id,omitempty"`
		UserPrompt string     `json:"user_prompt,omitempty"`
		Goal       string     `json:"goal,omitempty"`
		StartedAt  *time.Time `json:"started_at,omitempty"`
		EndedAt    *time.Time `json:"ended_at,omitempty"`
		Source     string     `json:"source,omitempty"`
	} `json:"session"`
}

// Name returns the adapter name
func (a *JSONLAdapter) Name() string {
	return "agent-jsonl"
}

// Parse converts raw agent-jsonl bytes into an AdaptedSession.
func (a *JSONLAdapter) Parse(raw []byte) (*AdaptedSession, error) {
	session := &AdaptedSession{Source: a.Name()}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if lineNo == 1 {
			var header jsonlHeader
			if err := json.Unmarshal([]byte(line), &header); err == nil && header.Session != nil {
				session.SessionID = header.Session.SessionID
				session.UserPrompt = header.Session.UserPrompt
				session.Goal = header.Session.Goal
				session.StartedAt = header.Session.StartedAt
				session.EndedAt = header.Session.EndedAt
				if header.Session.Source != "" {
					session.Source = header.Session.Source
				}
				continue
			}
		}

		var event AdaptedEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if event.Kind == "" {
			return nil, fmt.Errorf("line %d: missing event kind", lineNo)
		}
		session.Events = append(session.Events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}

	if len(session.Events) == 0 {
		return nil, fmt.Errorf("no events found in input")
	}
	return session, nil
}
