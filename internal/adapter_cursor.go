package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// CursorAdapter reads a session out of Cursor's globalStorage SQLite
// database (the cursorDiskKV table) and turns it into the neutral
// adapted shape. Raw input is a small JSON locator, not the database
// bytes themselves:
//
//	{"db_path": "/path/to/state.vscdb", "composer_id": "abc123"}
type CursorAdapter struct{}

type cursorLocator struct {
	DBPath     string `json:"db_path"`
	ComposerID string `json:"composer_id"`
}

// cursorComposer mirrors the composerData:<id> JSON value.
type cursorComposer struct {
	ComposerID    string `json:"composerId"`
	Name          string `json:"name,omitempty"`
	CreatedAt     int64  `json:"createdAt,omitempty"`
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty"`
}

// cursorBubble mirrors the bubbleId:<chatId>:<bubbleId> JSON value.
type cursorBubble struct {
	BubbleID   string `json:"bubbleId"`
	Text       string `json:"text,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Type       int    `json:"type"` // 1=user, 2=assistant
	CodeBlocks []struct {
		Language string `json:"language,omitempty"`
		Content  string `json:"content"`
	} `json:"codeBlocks,omitempty"`
}

// Name returns the adapter name
func (a *CursorAdapter) Name() string {
	return "cursor"
}

// Parse loads the located composer and its bubbles from the database.
func (a *CursorAdapter) Parse(raw []byte) (*AdaptedSession, error) {
	var loc cursorLocator
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("invalid cursor locator: %w", err)
	}
	if loc.DBPath == "" || loc.ComposerID == "" {
		return nil, fmt.Errorf("cursor locator requires db_path and composer_id")
	}

	db, err := sql.Open("sqlite", loc.DBPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	composer, err := a.loadComposer(db, loc.ComposerID)
	if err != nil {
		return nil, err
	}
	bubbles, err := a.loadBubbles(db, loc.ComposerID)
	if err != nil {
		return nil, err
	}

	return a.adapt(composer, bubbles)
}

func (a *CursorAdapter) loadComposer(db *sql.DB, composerID string) (*cursorComposer, error) {
	var value sql.NullString
	row := db.QueryRow("SELECT value FROM cursorDiskKV WHERE key = ?", "composerData:"+composerID)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("composer %s not found", composerID)
		}
		return nil, fmt.Errorf("failed to query composer: %w", err)
	}
	if !value.Valid {
		return nil, fmt.Errorf("composer %s has no data", composerID)
	}

	var composer cursorComposer
	if err := json.Unmarshal([]byte(value.String), &composer); err != nil {
		return nil, fmt.Errorf("failed to parse composer JSON: %w", err)
	}
	composer.ComposerID = composerID
	return &composer, nil
}

func (a *CursorAdapter) loadBubbles(db *sql.DB, composerID string) ([]*cursorBubble, error) {
	rows, err := db.Query(
		"SELECT key, value FROM cursorDiskKV WHERE key LIKE ? AND value IS NOT NULL",
		"bubbleId:"+composerID+":%")
	if err != nil {
		return nil, fmt.Errorf("failed to query bubbles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bubbles []*cursorBubble
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if !value.Valid {
			continue
		}

		var bubble cursorBubble
		if err := json.Unmarshal([]byte(value.String), &bubble); err != nil {
			LogDebug("Skipping unparsable bubble %s: %v", key, err)
			continue
		}
		if bubble.BubbleID == "" {
			if parts := strings.Split(key, ":"); len(parts) == 3 {
				bubble.BubbleID = parts[2]
			}
		}
		bubbles = append(bubbles, &bubble)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	sort.SliceStable(bubbles, func(i, j int) bool {
		return bubbles[i].Timestamp < bubbles[j].Timestamp
	})
	return bubbles, nil
}

// adapt maps composer metadata and bubbles onto the neutral shape: the
// first user bubble is the session prompt, later user bubbles become
// intent events, assistant bubbles become notes, and assistant code
// blocks become artifact_created events.
func (a *CursorAdapter) adapt(composer *cursorComposer, bubbles []*cursorBubble) (*AdaptedSession, error) {
	if len(bubbles) == 0 {
		return nil, fmt.Errorf("composer %s has no messages", composer.ComposerID)
	}

	session := &AdaptedSession{
		SessionID: composer.ComposerID,
		Goal:      composer.Name,
		Source:    a.Name(),
	}
	if composer.CreatedAt > 0 {
		t := time.UnixMilli(composer.CreatedAt).UTC()
		session.StartedAt = &t
	}
	if composer.LastUpdatedAt > 0 {
		t := time.UnixMilli(composer.LastUpdatedAt).UTC()
		session.EndedAt = &t
	}

	sawUserPrompt := false
	for _, bubble := range bubbles {
		var ts *time.Time
		if bubble.Timestamp > 0 {
			t := time.UnixMilli(bubble.Timestamp).UTC()
			ts = &t
		}

		switch bubble.Type {
		case 1: // user
			if !sawUserPrompt {
				session.UserPrompt = bubble.Text
				sawUserPrompt = true
				continue
			}
			if bubble.Text == "" {
				continue
			}
			session.Events = append(session.Events, AdaptedEvent{
				Kind:    KindIntent,
				TS:      ts,
				Actor:   Actor{Type: "user"},
				Payload: &IntentPayload{Description: bubble.Text},
			})
		case 2: // assistant
			if bubble.Text != "" {
				session.Events = append(session.Events, AdaptedEvent{
					Kind:    KindNote,
					TS:      ts,
					Actor:   Actor{Type: "agent"},
					Payload: &NotePayload{Text: bubble.Text},
				})
			}
			for _, block := range bubble.CodeBlocks {
				session.Events = append(session.Events, AdaptedEvent{
					Kind:  KindArtifactCreated,
					TS:    ts,
					Actor: Actor{Type: "agent"},
					Payload: &ArtifactPayload{
						ArtifactType: "code_block",
						Text:         block.Content,
					},
				})
			}
		}
	}

	if len(session.Events) == 0 && session.UserPrompt == "" {
		return nil, fmt.Errorf("composer %s yielded no usable events", composer.ComposerID)
	}
	return session, nil
}
