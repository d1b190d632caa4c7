package internal

import (
	"testing"
	"time"
)

func newResolverTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SessionsDir = t.TempDir()
	if err := cfg.EnsureSessionsDir(); err != nil {
		t.Fatalf("EnsureSessionsDir failed: %v", err)
	}
	return cfg
}

func persistSession(t *testing.T, cfg *Config, sessionID, prompt string) {
	t.Helper()
	events := CreateTestSessionEvents(sessionID, prompt)
	if err := AppendEvents(SessionLogPath(cfg.SessionsDir, sessionID), events); err != nil {
		t.Fatalf("Failed to persist session %s: %v", sessionID, err)
	}
}

func TestResolver_ExplicitMergeWinsOverEverything(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_existing", "Fix login bug")

	// The adapted session carries both a matching id and a matching
	// prompt; the explicit target still wins.
	adapted := CreateTestAdaptedSession("Fix login bug", nil)
	adapted.SessionID = "sess_existing"

	r := NewResolver(cfg)
	res, err := r.Resolve(adapted, "sess_target", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Strategy != StrategyExplicitMerge {
		t.Errorf("Strategy = %s, want %s", res.Strategy, StrategyExplicitMerge)
	}
	if res.SessionID != "sess_target" {
		t.Errorf("SessionID = %s, want sess_target", res.SessionID)
	}
}

func TestResolver_AdaptedSessionIDRequiresExistingLog(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_existing", "Fix login bug")
	r := NewResolver(cfg)

	t.Run("existing log matches", func(t *testing.T) {
		adapted := CreateTestAdaptedSession("something unrelated entirely", nil)
		adapted.SessionID = "sess_existing"

		res, err := r.Resolve(adapted, "", time.Now())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if res.Strategy != StrategyAdaptedSessionID {
			t.Errorf("Strategy = %s, want %s", res.Strategy, StrategyAdaptedSessionID)
		}
		if res.SessionID != "sess_existing" {
			t.Errorf("SessionID = %s, want sess_existing", res.SessionID)
		}
	})

	t.Run("unknown id falls through to new session keeping the id", func(t *testing.T) {
		adapted := CreateTestAdaptedSession("something unrelated entirely", nil)
		adapted.SessionID = "sess_never_seen"

		res, err := r.Resolve(adapted, "", time.Now())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if res.Strategy != StrategyNewSession {
			t.Errorf("Strategy = %s, want %s", res.Strategy, StrategyNewSession)
		}
		if res.SessionID != "sess_never_seen" {
			t.Errorf("SessionID = %s, want adapter id reused", res.SessionID)
		}
	})
}

func TestResolver_FingerprintMatch(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_login", "Fix login bug")
	persistSession(t, cfg, "sess_docs", "Write the release notes for version two")
	r := NewResolver(cfg)

	// Same prompt from another source 10 minutes later.
	started := testBaseTime.Add(10 * time.Minute)
	adapted := &AdaptedSession{
		UserPrompt: "Fix login bug",
		StartedAt:  &started,
		Source:     "test",
	}

	res, err := r.Resolve(adapted, "", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Strategy != StrategyFingerprintMatch {
		t.Fatalf("Strategy = %s, want %s", res.Strategy, StrategyFingerprintMatch)
	}
	if res.SessionID != "sess_login" {
		t.Errorf("SessionID = %s, want sess_login", res.SessionID)
	}
	// Exact prompt (1.0) within half an hour (1.0): 0.78 + 0.22 = 1.0.
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
}

func TestResolver_FingerprintRejectsOutsideWindow(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_login", "Fix login bug")
	r := NewResolver(cfg)

	// Identical prompt but 100 hours later, past the 72h window.
	started := testBaseTime.Add(100 * time.Hour)
	adapted := &AdaptedSession{
		UserPrompt: "Fix login bug",
		StartedAt:  &started,
		Source:     "test",
	}

	res, err := r.Resolve(adapted, "", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Strategy != StrategyNewSession {
		t.Errorf("Strategy = %s, want %s (window must exclude the candidate)",
			res.Strategy, StrategyNewSession)
	}
}

func TestResolver_FingerprintRejectsBelowConfidence(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_login", "Fix login bug")
	cfg.FingerprintMinConfidence = 0.99
	r := NewResolver(cfg)

	started := testBaseTime.Add(48 * time.Hour)
	adapted := &AdaptedSession{
		UserPrompt: "Fix login bug",
		StartedAt:  &started,
		Source:     "test",
	}

	res, err := r.Resolve(adapted, "", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Strategy != StrategyNewSession {
		t.Errorf("Strategy = %s, want %s below MinConfidence", res.Strategy, StrategyNewSession)
	}
}

func TestResolver_NoPromptSkipsFingerprinting(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_login", "Fix login bug")
	r := NewResolver(cfg)

	adapted := &AdaptedSession{Source: "test"}
	res, err := r.Resolve(adapted, "", testBaseTime)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Strategy != StrategyNewSession {
		t.Errorf("Strategy = %s, want %s", res.Strategy, StrategyNewSession)
	}
	if res.SessionID == "" {
		t.Error("SessionID must be synthesized for a new session")
	}
}

func TestResolver_PicksHighestConfidenceCandidate(t *testing.T) {
	cfg := newResolverTestConfig(t)
	persistSession(t, cfg, "sess_close", "Fix login bug")
	persistSession(t, cfg, "sess_partial", "Fix login bug in the session handler and token check")
	r := NewResolver(cfg)

	started := testBaseTime.Add(10 * time.Minute)
	adapted := &AdaptedSession{
		UserPrompt: "Fix login bug",
		StartedAt:  &started,
		Source:     "test",
	}

	res, err := r.Resolve(adapted, "", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.SessionID != "sess_close" {
		t.Errorf("SessionID = %s, want sess_close (exact prompt beats partial)", res.SessionID)
	}
}
