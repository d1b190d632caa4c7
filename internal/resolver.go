package internal

import (
	"fmt"
	"time"
)

// MergeStrategy names how the resolver matched an incoming session to a
// persisted one. Strategy values are part of the ingest result contract.
type MergeStrategy string

const (
	StrategyExplicitMerge    MergeStrategy = "explicit_merge"
	StrategyAdaptedSessionID MergeStrategy = "adapted_session_id"
	StrategyFingerprintMatch MergeStrategy = "fingerprint_match"
	StrategyNewSession       MergeStrategy = "new_session"
)

// Resolution is the resolver's verdict for one incoming session.
type Resolution struct {
	SessionID  string
	Strategy   MergeStrategy
	Confidence float64 // set only for fingerprint matches
}

// Resolver decides which persisted session an incoming adapted session
// continues, if any.
type Resolver struct {
	cfg *Config
}

// NewResolver creates a new Resolver
func NewResolver(cfg *Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve applies the merge precedence in order, first match wins:
// explicit merge target, adapter-supplied id with an existing log,
// fingerprint match, new session.
func (r *Resolver) Resolve(adapted *AdaptedSession, explicitID string, now time.Time) (*Resolution, error) {
	if explicitID != "" {
		return &Resolution{SessionID: explicitID, Strategy: StrategyExplicitMerge}, nil
	}

	if adapted.SessionID != "" && SessionLogExists(r.cfg.SessionsDir, adapted.SessionID) {
		return &Resolution{SessionID: adapted.SessionID, Strategy: StrategyAdaptedSessionID}, nil
	}

	if match, err := r.matchFingerprint(adapted); err != nil {
		return nil, fmt.Errorf("fingerprint matching failed: %w", err)
	} else if match != nil {
		return match, nil
	}

	// Reuse an adapter-supplied id for a brand new log, else synthesize.
	sessionID := adapted.SessionID
	if sessionID == "" {
		sessionID = NewSessionID(now)
	}
	return &Resolution{SessionID: sessionID, Strategy: StrategyNewSession}, nil
}

// matchFingerprint scans every persisted session and scores it against
// the incoming one. A nil resolution means no candidate cleared the
// configured confidence threshold; that is a fall-through, not an error.
func (r *Resolver) matchFingerprint(adapted *AdaptedSession) (*Resolution, error) {
	prompt := adapted.RepresentativePrompt()
	if prompt == "" {
		LogDebug("No normalizable prompt; skipping fingerprint resolution")
		return nil, nil
	}
	incomingTS := adapted.EarliestTimestamp()

	ids, err := ListSessionIDs(r.cfg.SessionsDir)
	if err != nil {
		return nil, err
	}

	var bestID string
	var bestConfidence float64
	for _, id := range ids {
		fp, err := ScanFingerprint(r.cfg.SessionsDir, id)
		if err != nil {
			return nil, err
		}

		promptScore := PromptScore(prompt, fp.Prompt)
		if promptScore < promptScoreFloor {
			continue
		}

		distanceHours := 0.0
		if !incomingTS.IsZero() {
			distanceHours = incomingTS.Sub(fp.BestTimestamp()).Abs().Hours()
		}
		if distanceHours > r.cfg.FingerprintMaxWindowHours {
			continue
		}

		confidence := r.cfg.FingerprintConfidence(promptScore, TimeScore(distanceHours))
		LogDebug("Fingerprint candidate %s: prompt=%.3f time(dist=%.1fh)=%.2f confidence=%.3f",
			id, promptScore, distanceHours, TimeScore(distanceHours), confidence)
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestID = id
		}
	}

	if bestID == "" || bestConfidence < r.cfg.FingerprintMinConfidence {
		return nil, nil
	}
	return &Resolution{
		SessionID:  bestID,
		Strategy:   StrategyFingerprintMatch,
		Confidence: bestConfidence,
	}, nil
}
