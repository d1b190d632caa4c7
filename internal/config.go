package internal

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config carries the tunables for ingestion, identity resolution, and
// audit normalization. Defaults work out of the box; every field can be
// overridden through AGENT_AUDIT_* environment variables.
type Config struct {
	// SessionsDir is where canonical logs and raw sidecars live.
	SessionsDir string

	// Fingerprint matching.
	FingerprintMaxWindowHours float64
	FingerprintMinConfidence  float64
	FingerprintPromptWeight   float64
	FingerprintTimeWeight     float64

	// Semantic dedup timestamp bucket width, in milliseconds.
	DedupBucketMS int64

	// Revision detection thresholds.
	RepeatEditThreshold  int
	LargeChangeLines     int
	RecentChangeWindowMS int64
}

// DefaultConfig returns the built-in tunables with the sessions directory
// under the user's home.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		SessionsDir:               filepath.Join(home, ".agent-audit", "sessions"),
		FingerprintMaxWindowHours: 72,
		FingerprintMinConfidence:  0.55,
		FingerprintPromptWeight:   0.78,
		FingerprintTimeWeight:     0.22,
		DedupBucketMS:             120000,
		RepeatEditThreshold:       3,
		LargeChangeLines:          80,
		RecentChangeWindowMS:      10 * 60 * 1000,
	}
}

// LoadConfig builds the config from defaults plus environment overrides.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if dir := os.Getenv("AGENT_AUDIT_SESSIONS_DIR"); dir != "" {
		cfg.SessionsDir = dir
	}
	overrideFloat(&cfg.FingerprintMaxWindowHours, "AGENT_AUDIT_FP_MAX_WINDOW_HOURS")
	overrideFloat(&cfg.FingerprintMinConfidence, "AGENT_AUDIT_FP_MIN_CONFIDENCE")
	overrideFloat(&cfg.FingerprintPromptWeight, "AGENT_AUDIT_FP_PROMPT_WEIGHT")
	overrideFloat(&cfg.FingerprintTimeWeight, "AGENT_AUDIT_FP_TIME_WEIGHT")
	overrideInt64(&cfg.DedupBucketMS, "AGENT_AUDIT_DEDUP_BUCKET_MS")
	overrideInt(&cfg.RepeatEditThreshold, "AGENT_AUDIT_REPEAT_EDIT_THRESHOLD")
	overrideInt(&cfg.LargeChangeLines, "AGENT_AUDIT_LARGE_CHANGE_LINES")
	overrideInt64(&cfg.RecentChangeWindowMS, "AGENT_AUDIT_RECENT_CHANGE_WINDOW_MS")

	return cfg
}

// EnsureSessionsDir creates the sessions directory if missing.
func (c *Config) EnsureSessionsDir() error {
	if err := os.MkdirAll(c.SessionsDir, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: c.SessionsDir, Err: err}
	}
	return nil
}

func overrideFloat(dst *float64, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		LogWarn("Ignoring invalid %s=%q: %v", key, raw, err)
		return
	}
	*dst = v
}

func overrideInt(dst *int, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		LogWarn("Ignoring invalid %s=%q: %v", key, raw, err)
		return
	}
	*dst = v
}

func overrideInt64(dst *int64, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		LogWarn("Ignoring invalid %s=%q: %v", key, raw, err)
		return
	}
	*dst = v
}
