package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SessionLogPath returns the canonical log path for a session.
func SessionLogPath(sessionsDir, sessionID string) string {
	return filepath.Join(sessionsDir, sessionID+".jsonl")
}

// RawSidecarPath returns the raw sidecar path for a session and source.
func RawSidecarPath(sessionsDir, sessionID, source string) string {
	return filepath.Join(sessionsDir, fmt.Sprintf("%s.%s.raw.jsonl", sessionID, source))
}

// SessionLogExists reports whether a canonical log exists for the id.
func SessionLogExists(sessionsDir, sessionID string) bool {
	info, err := os.Stat(SessionLogPath(sessionsDir, sessionID))
	return err == nil && !info.IsDir()
}

// ReadSessionLog loads and parses a canonical session log. A malformed
// line is a hard ParseError carrying the line number; the only tolerated
// damage is a truncated final line with no trailing newline, which is
// treated as a partial write and dropped.
func ReadSessionLog(path string) ([]*CanonicalEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	truncatedTail := len(data) > 0 && data[len(data)-1] != '\n'

	var events []*CanonicalEvent
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event CanonicalEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			if truncatedTail && !scanner.Scan() {
				LogWarn("Dropping truncated final line %d of %s", lineNo, path)
				break
			}
			return nil, &ParseError{Path: path, Line: lineNo, Err: err}
		}
		events = append(events, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	return events, nil
}

// AppendEvents appends events to a session log, one JSON object per line.
// The file is created if missing.
func AppendEvents(path string, events []*CanonicalEvent) error {
	if len(events) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return &IOError{Op: "append", Path: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &IOError{Op: "append", Path: path, Err: err}
	}
	return nil
}

// RewriteSessionLog replaces a session log with the given events, in
// slice order. A temp-file rename keeps a crash from leaving a half
// written canonical log behind.
func RewriteSessionLog(path string, events []*CanonicalEvent) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &IOError{Op: "open", Path: tmp, Err: err}
	}

	w := bufio.NewWriter(f)
	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return &IOError{Op: "write", Path: tmp, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &IOError{Op: "write", Path: tmp, Err: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// WriteRawSidecar stores the ingested raw bytes verbatim next to the
// canonical log. Sidecars are best-effort replay material; the canonical
// log stays authoritative if this write fails partway.
func WriteRawSidecar(path string, raw []byte) error {
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ListSessionIDs returns the ids of all canonical logs in the sessions
// directory, sorted. Raw sidecars and the listing index are skipped.
func ListSessionIDs(sessionsDir string) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: sessionsDir, Err: err}
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if strings.HasSuffix(name, ".raw.jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".jsonl"))
	}
	sort.Strings(ids)
	return ids, nil
}
