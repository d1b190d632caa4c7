package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/agent-audit/internal"
	"github.com/iksnae/agent-audit/testutil"
)

func writeCaptureFile(t *testing.T, dir string) string {
	t.Helper()
	ts1 := testutil.BaseTime
	ts2 := testutil.BaseTime.Add(2 * time.Minute)
	capture := testutil.JSONLLines(t, &internal.AdaptedSession{
		UserPrompt: "fix login bug",
		Source:     "agent-jsonl",
		Events: []internal.AdaptedEvent{
			{
				Kind:    internal.KindIntent,
				TS:      &ts1,
				Actor:   internal.Actor{Type: "agent"},
				Payload: &internal.IntentPayload{Description: "fix login bug"},
			},
			{
				Kind:    internal.KindFileOp,
				TS:      &ts2,
				Actor:   internal.Actor{Type: "agent"},
				Payload: &internal.FileOpPayload{Op: "edit", Path: "internal/auth.go", LinesChanged: 8},
			},
		},
	})

	path := filepath.Join(dir, "capture.jsonl")
	if err := os.WriteFile(path, capture, 0644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}
	return path
}

func decodeIngestResult(t *testing.T, out string) *internal.IngestResult {
	t.Helper()
	var result internal.IngestResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode ingest output %q: %v", out, err)
	}
	return &result
}

func TestIngestCommand_NewSession(t *testing.T) {
	sessions := t.TempDir()
	capture := writeCaptureFile(t, t.TempDir())

	out, err := executeCommand(t, "ingest", capture, "--sessions-dir", sessions)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	result := decodeIngestResult(t, out)
	if result.MergeStrategy != internal.StrategyNewSession {
		t.Errorf("MergeStrategy = %q, want %q", result.MergeStrategy, internal.StrategyNewSession)
	}
	// Two adapted events plus a session start derived from the prompt.
	if result.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", result.Inserted)
	}
	if result.SessionID == "" {
		t.Fatal("result has no session id")
	}

	events, err := internal.ReadSessionLog(result.SessionPath)
	if err != nil {
		t.Fatalf("Failed to read persisted log: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("persisted %d events, want 3", len(events))
	}
	if _, err := os.Stat(result.RawPath); err != nil {
		t.Errorf("raw sidecar missing: %v", err)
	}
}

func TestIngestCommand_ReIngestSkipsDuplicates(t *testing.T) {
	sessions := t.TempDir()
	capture := writeCaptureFile(t, t.TempDir())

	out, err := executeCommand(t, "ingest", capture, "--sessions-dir", sessions)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	first := decodeIngestResult(t, out)

	out, err = executeCommand(t, "ingest", capture, "--sessions-dir", sessions)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	second := decodeIngestResult(t, out)

	if second.SessionID != first.SessionID {
		t.Errorf("second ingest resolved to %q, want %q", second.SessionID, first.SessionID)
	}
	if second.Inserted != 0 {
		t.Errorf("second Inserted = %d, want 0", second.Inserted)
	}
	if second.SkippedDuplicates != first.Inserted {
		t.Errorf("SkippedDuplicates = %d, want %d", second.SkippedDuplicates, first.Inserted)
	}
}

func TestIngestCommand_ReadsStdin(t *testing.T) {
	sessions := t.TempDir()
	ts := testutil.BaseTime
	capture := testutil.JSONLLines(t, &internal.AdaptedSession{
		UserPrompt: "add rate limiting",
		Source:     "agent-jsonl",
		Events: []internal.AdaptedEvent{
			{
				Kind:    internal.KindNote,
				TS:      &ts,
				Actor:   internal.Actor{Type: "agent"},
				Payload: &internal.NotePayload{Text: "looking at the middleware"},
			},
		},
	})

	resetCommandState()
	var out bytes.Buffer
	rootCmd.SetArgs([]string{"ingest", "--sessions-dir", sessions})
	rootCmd.SetIn(bytes.NewReader(capture))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ingest from stdin failed: %v", err)
	}

	result := decodeIngestResult(t, out.String())
	if result.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", result.Inserted)
	}
}

func TestIngestCommand_MergeSessionFlag(t *testing.T) {
	sessions := t.TempDir()
	testutil.WriteSessionLog(t, sessions, testutil.SessionEvents("sess_target", "fix login bug", testutil.BaseTime))
	capture := writeCaptureFile(t, t.TempDir())

	out, err := executeCommand(t, "ingest", capture, "--sessions-dir", sessions, "--merge-session", "sess_target")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	result := decodeIngestResult(t, out)
	if result.MergeStrategy != internal.StrategyExplicitMerge {
		t.Errorf("MergeStrategy = %q, want %q", result.MergeStrategy, internal.StrategyExplicitMerge)
	}
	if result.SessionID != "sess_target" {
		t.Errorf("SessionID = %q, want sess_target", result.SessionID)
	}
}

func TestIngestCommand_CursorAdapter(t *testing.T) {
	sessions := t.TempDir()
	dbDir := t.TempDir()
	dbPath := testutil.CreateCursorFixture(t, dbDir, "composer-1")
	locator := testutil.CursorLocator(t, dbPath, "composer-1")

	path := filepath.Join(dbDir, "locator.json")
	if err := os.WriteFile(path, locator, 0644); err != nil {
		t.Fatalf("Failed to write locator: %v", err)
	}

	out, err := executeCommand(t, "ingest", path, "--sessions-dir", sessions, "--adapter", "cursor")
	if err != nil {
		t.Fatalf("cursor ingest failed: %v", err)
	}

	result := decodeIngestResult(t, out)
	if result.Adapter != "cursor" {
		t.Errorf("Adapter = %q, want cursor", result.Adapter)
	}
	if result.Inserted == 0 {
		t.Error("cursor ingest inserted no events")
	}
}

func TestIngestCommand_UnknownAdapter(t *testing.T) {
	capture := writeCaptureFile(t, t.TempDir())

	_, err := executeCommand(t, "ingest", capture, "--sessions-dir", t.TempDir(), "--adapter", "mystery")
	if err == nil {
		t.Fatal("expected error for unknown adapter, got nil")
	}
}

func TestIngestCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "ingest", "/no/such/capture.jsonl", "--sessions-dir", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing capture file, got nil")
	}
}
