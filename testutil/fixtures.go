// Package testutil provides shared fixtures for packages that test
// against persisted session logs and Cursor storage databases.
package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/agent-audit/internal"
	_ "modernc.org/sqlite"
)

// BaseTime anchors deterministic timestamps across fixtures.
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// WriteSessionLog persists events as a canonical session log fixture.
func WriteSessionLog(t *testing.T, sessionsDir string, events []*internal.CanonicalEvent) string {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("WriteSessionLog needs at least one event")
	}
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		t.Fatalf("Failed to create sessions dir: %v", err)
	}

	path := internal.SessionLogPath(sessionsDir, events[0].SessionID)
	if err := internal.AppendEvents(path, events); err != nil {
		t.Fatalf("Failed to write session log: %v", err)
	}
	return path
}

// SessionEvents builds a complete small session: start, intent, file
// edit, and passing verification, starting at the given time.
func SessionEvents(sessionID, prompt string, start time.Time) []*internal.CanonicalEvent {
	mint := func(seq int, kind internal.EventKind, payload internal.Payload) *internal.CanonicalEvent {
		return &internal.CanonicalEvent{
			ID:            internal.NewEventID(seq),
			SessionID:     sessionID,
			Seq:           seq,
			TS:            start.Add(time.Duration(seq) * time.Minute),
			Kind:          kind,
			Actor:         internal.Actor{Type: "agent"},
			Payload:       payload,
			SchemaVersion: internal.SchemaVersion,
		}
	}
	return []*internal.CanonicalEvent{
		mint(1, internal.KindSessionStart, &internal.SessionStartPayload{UserPrompt: prompt, Source: "test"}),
		mint(2, internal.KindIntent, &internal.IntentPayload{Description: prompt}),
		mint(3, internal.KindFileOp, &internal.FileOpPayload{Op: "edit", Path: "internal/auth.go", LinesChanged: 12}),
		mint(4, internal.KindVerification, &internal.VerificationPayload{Method: "test", Result: "pass"}),
	}
}

// CreateCursorFixture creates a Cursor globalStorage SQLite database
// with one composer and a short conversation. Returns the db path.
func CreateCursorFixture(t *testing.T, dir, composerID string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "state.vscdb")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS cursorDiskKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	composer := map[string]interface{}{
		"composerId":    composerID,
		"name":          "Fix login bug",
		"createdAt":     BaseTime.UnixMilli(),
		"lastUpdatedAt": BaseTime.Add(30 * time.Minute).UnixMilli(),
	}
	composerJSON, _ := json.Marshal(composer)

	bubbles := []map[string]interface{}{
		{
			"bubbleId":  "bubble1",
			"text":      "Fix the login bug in auth.go",
			"timestamp": BaseTime.UnixMilli(),
			"type":      1,
		},
		{
			"bubbleId":  "bubble2",
			"text":      "I found the problem in the token check.",
			"timestamp": BaseTime.Add(5 * time.Minute).UnixMilli(),
			"type":      2,
			"codeBlocks": []map[string]interface{}{
				{"language": "go", "content": "func checkToken() {}"},
			},
		},
		{
			"bubbleId":  "bubble3",
			"text":      "Now add a regression test",
			"timestamp": BaseTime.Add(10 * time.Minute).UnixMilli(),
			"type":      1,
		},
	}

	insertSQL := "INSERT INTO cursorDiskKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, "composerData:"+composerID, string(composerJSON)); err != nil {
		t.Fatalf("Failed to insert composer: %v", err)
	}
	for _, bubble := range bubbles {
		bubbleJSON, _ := json.Marshal(bubble)
		key := "bubbleId:" + composerID + ":" + bubble["bubbleId"].(string)
		if _, err := db.Exec(insertSQL, key, string(bubbleJSON)); err != nil {
			t.Fatalf("Failed to insert bubble: %v", err)
		}
	}

	return dbPath
}

// CursorLocator builds the raw ingest input for the cursor adapter.
func CursorLocator(t *testing.T, dbPath, composerID string) []byte {
	t.Helper()
	locator, err := json.Marshal(map[string]string{
		"db_path":     dbPath,
		"composer_id": composerID,
	})
	if err != nil {
		t.Fatalf("Failed to encode locator: %v", err)
	}
	return locator
}
