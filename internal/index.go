package internal

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	SessionID  string    `yaml:"session_id"`
	Prompt     string    `yaml:"prompt,omitempty"`
	Goal       string    `yaml:"goal,omitempty"`
	EventCount int       `yaml:"event_count"`
	StartedAt  time.Time `yaml:"started_at,omitempty"`
	EndedAt    time.Time `yaml:"ended_at,omitempty"`
	Ended      bool      `yaml:"ended"`
}

// ListIndex caches session summaries so repeated listings skip a full
// rescan. It is advisory display material only: identity resolution
// always recomputes fingerprints from the logs themselves.
type ListIndex struct {
	GeneratedAt time.Time        `yaml:"generated_at"`
	DirModTime  time.Time        `yaml:"dir_mod_time"`
	Sessions    []SessionSummary `yaml:"sessions"`
}

// IndexManager maintains the YAML listing index inside the sessions dir.
type IndexManager struct {
	cfg *Config
}

// NewIndexManager creates a new IndexManager
func NewIndexManager(cfg *Config) *IndexManager {
	return &IndexManager{cfg: cfg}
}

// IndexPath returns the path of the listing index file.
func (m *IndexManager) IndexPath() string {
	return filepath.Join(m.cfg.SessionsDir, "index.yaml")
}

// ListSessions returns summaries for every persisted session, from the
// cached index when it is still current.
func (m *IndexManager) ListSessions() ([]SessionSummary, error) {
	dirInfo, err := os.Stat(m.cfg.SessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: m.cfg.SessionsDir, Err: err}
	}

	if index := m.loadIndex(); index != nil && index.DirModTime.Equal(dirInfo.ModTime()) {
		LogDebug("Listing %d session(s) from index", len(index.Sessions))
		return index.Sessions, nil
	}

	ids, err := ListSessionIDs(m.cfg.SessionsDir)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := m.summarize(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	m.saveIndex(&ListIndex{
		GeneratedAt: time.Now().UTC(),
		DirModTime:  dirInfo.ModTime(),
		Sessions:    summaries,
	})
	return summaries, nil
}

func (m *IndexManager) summarize(sessionID string) (*SessionSummary, error) {
	events, err := ReadSessionLog(SessionLogPath(m.cfg.SessionsDir, sessionID))
	if err != nil {
		return nil, err
	}

	summary := &SessionSummary{SessionID: sessionID, EventCount: len(events)}
	for _, event := range events {
		switch p := event.Payload.(type) {
		case *SessionStartPayload:
			summary.StartedAt = event.TS
			summary.Prompt = p.UserPrompt
			summary.Goal = p.Goal
		case *SessionEndPayload:
			summary.EndedAt = event.TS
			summary.Ended = true
		case *IntentPayload:
			if summary.Prompt == "" {
				summary.Prompt = p.Description
			}
		}
		if summary.StartedAt.IsZero() {
			summary.StartedAt = event.TS
		}
	}
	return summary, nil
}

// loadIndex returns nil on any failure; a stale or damaged index is
// rebuilt, never trusted.
func (m *IndexManager) loadIndex() *ListIndex {
	data, err := os.ReadFile(m.IndexPath())
	if err != nil {
		return nil
	}
	var index ListIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		LogWarn("Ignoring unreadable listing index: %v", err)
		return nil
	}
	return &index
}

func (m *IndexManager) saveIndex(index *ListIndex) {
	data, err := yaml.Marshal(index)
	if err != nil {
		LogWarn("Failed to encode listing index: %v", err)
		return
	}
	if err := os.WriteFile(m.IndexPath(), data, 0644); err != nil {
		LogWarn("Failed to write listing index: %v", err)
	}
}
