package internal

import (
	"math"
	"os"
	"strings"
	"time"
	"unicode"
)

// maxNormalizedPromptLen bounds the normalized prompt used for matching.
const maxNormalizedPromptLen = 320

// containmentMinLen is the minimum normalized length for the containment
// shortcut to apply; shorter prompts contain each other too easily.
const containmentMinLen = 18

// promptScoreFloor is the minimum prompt similarity for a candidate to
// stay in the running at all.
const promptScoreFloor = 0.52

// SessionFingerprint is the identity summary of one persisted session,
// recomputed from its log on demand and never stored separately.
type SessionFingerprint struct {
	SessionID string
	Prompt    string // normalized
	StartedAt time.Time
	EndedAt   time.Time
	UpdatedAt time.Time // log file mtime
}

// BestTimestamp returns the most trustworthy known time for the session:
// ended_at, then started_at, then the log file's mtime.
func (f *SessionFingerprint) BestTimestamp() time.Time {
	if !f.EndedAt.IsZero() {
		return f.EndedAt
	}
	if !f.StartedAt.IsZero() {
		return f.StartedAt
	}
	return f.UpdatedAt
}

// NormalizePrompt lowercases, strips non-alphanumerics to spaces,
// collapses whitespace, and truncates. An empty result means the text is
// unusable for fingerprinting.
func NormalizePrompt(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	return truncate(normalized, maxNormalizedPromptLen)
}

// ScanFingerprint derives a session's fingerprint from its persisted log.
func ScanFingerprint(sessionsDir, sessionID string) (*SessionFingerprint, error) {
	path := SessionLogPath(sessionsDir, sessionID)
	events, err := ReadSessionLog(path)
	if err != nil {
		return nil, err
	}

	fp := &SessionFingerprint{SessionID: sessionID}
	if info, err := os.Stat(path); err == nil {
		fp.UpdatedAt = info.ModTime()
	}

	for _, event := range events {
		switch p := event.Payload.(type) {
		case *SessionStartPayload:
			fp.StartedAt = event.TS
			if fp.Prompt == "" {
				if prompt := NormalizePrompt(p.UserPrompt); prompt != "" {
					fp.Prompt = prompt
				} else if goal := NormalizePrompt(p.Goal); goal != "" {
					fp.Prompt = goal
				}
			}
		case *SessionEndPayload:
			fp.EndedAt = event.TS
		case *IntentPayload:
			if fp.Prompt == "" {
				if desc := NormalizePrompt(p.Description); desc != "" {
					fp.Prompt = desc
				} else if title := NormalizePrompt(p.Title); title != "" {
					fp.Prompt = title
				}
			}
		}
		if fp.StartedAt.IsZero() && !event.TS.IsZero() {
			fp.StartedAt = event.TS
		}
	}

	return fp, nil
}

// PromptScore compares two normalized prompts: exact match scores 1.0,
// containment of one long prompt in another 0.9, otherwise Jaccard
// similarity over words longer than 2 characters.
func PromptScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if len(a) >= containmentMinLen && len(b) >= containmentMinLen &&
		(strings.Contains(a, b) || strings.Contains(b, a)) {
		return 0.9
	}
	return jaccard(promptTokens(a), promptTokens(b))
}

func promptTokens(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(s) {
		if len(word) > 2 {
			tokens[word] = struct{}{}
		}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// TimeScore maps the absolute hour distance between two session
// timestamps onto a step scale.
func TimeScore(distanceHours float64) float64 {
	switch {
	case distanceHours <= 0.5:
		return 1.0
	case distanceHours <= 6:
		return 0.8
	case distanceHours <= 24:
		return 0.5
	case distanceHours <= 72:
		return 0.25
	default:
		return 0
	}
}

// FingerprintConfidence combines prompt and time similarity with the
// configured weights, rounded to 3 decimals.
func (c *Config) FingerprintConfidence(promptScore, timeScore float64) float64 {
	confidence := promptScore*c.FingerprintPromptWeight + timeScore*c.FingerprintTimeWeight
	return math.Round(confidence*1000) / 1000
}
