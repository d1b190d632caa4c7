package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Semantic key truncation limits, per kind.
const (
	semanticActionLen   = 80
	semanticTargetLen   = 200
	semanticArtifactLen = 300
)

// Deduplicator detects events already present in a session. The exact
// strategy compares full structural identity and is used for first
// ingest into an empty session; the semantic strategy buckets timestamps
// and reduces per-kind keys, so two sources recording the same action at
// slightly different times still collide.
type Deduplicator struct {
	keys     map[string]struct{}
	semantic bool
	bucketMS int64
}

// NewExactDeduplicator creates a deduplicator on structural identity.
func NewExactDeduplicator() *Deduplicator {
	return &Deduplicator{keys: make(map[string]struct{})}
}

// NewSemanticDeduplicator creates a deduplicator on reduced per-kind
// keys with timestamps bucketed to the given width.
func NewSemanticDeduplicator(bucketMS int64) *Deduplicator {
	return &Deduplicator{keys: make(map[string]struct{}), semantic: true, bucketMS: bucketMS}
}

// Seed registers the keys of already-persisted events.
func (d *Deduplicator) Seed(events []*CanonicalEvent) {
	for _, event := range events {
		d.keys[d.key(event)] = struct{}{}
	}
}

// Admit reports whether the event is new. New events are registered
// immediately so duplicates within the same incoming batch collide too.
func (d *Deduplicator) Admit(event *CanonicalEvent) bool {
	key := d.key(event)
	if _, seen := d.keys[key]; seen {
		return false
	}
	d.keys[key] = struct{}{}
	return true
}

func (d *Deduplicator) key(event *CanonicalEvent) string {
	if d.semantic {
		return d.semanticKey(event)
	}
	return d.exactKey(event)
}

// exactKey hashes the full structural identity of an event, excluding
// the assigned id and seq.
func (d *Deduplicator) exactKey(event *CanonicalEvent) string {
	return hashKey(
		string(event.Kind),
		fmt.Sprintf("%d", event.TS.UnixNano()),
		event.Actor.Type,
		event.Actor.ID,
		scopeKey(event.Scope),
		payloadKey(event.Payload),
	)
}

func (d *Deduplicator) semanticKey(event *CanonicalEvent) string {
	bucket := ""
	if d.bucketMS > 0 {
		bucket = fmt.Sprintf("%d", event.TS.UnixMilli()/d.bucketMS)
	}

	switch p := event.Payload.(type) {
	case *SessionStartPayload, *SessionEndPayload:
		// Boundary events collapse to the kind alone: a session has at
		// most one of each regardless of source timestamps.
		return hashKey(string(event.Kind))
	case *IntentPayload:
		text := NormalizePrompt(p.Description)
		if text == "" {
			text = NormalizePrompt(p.Title)
		}
		return hashKey(string(event.Kind), text)
	case *ToolCallPayload:
		return hashKey(string(event.Kind), bucket, event.Actor.Type,
			truncate(NormalizePrompt(p.Action), semanticActionLen),
			truncate(NormalizePrompt(p.Target), semanticTargetLen))
	case *ArtifactPayload:
		return hashKey(string(event.Kind), p.ArtifactType, p.IntentID,
			truncate(NormalizePrompt(p.Text), semanticArtifactLen))
	case *TokenUsagePayload:
		return hashKey(string(event.Kind), bucket, p.IntentID)
	default:
		// All other kinds keep the exact shape with a bucketed ts.
		return hashKey(
			string(event.Kind),
			bucket,
			event.Actor.Type,
			event.Actor.ID,
			scopeKey(event.Scope),
			payloadKey(event.Payload),
		)
	}
}

func scopeKey(scope *Scope) string {
	if scope.IsZero() {
		return ""
	}
	return strings.Join([]string{scope.IntentID, scope.File, scope.Module}, "\x1f")
}

// payloadKey serializes a payload deterministically. encoding/json sorts
// map keys and struct fields marshal in declaration order, so equal
// payloads always produce equal keys.
func payloadKey(p Payload) string {
	if p == nil {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("unmarshalable:%T", p)
	}
	return string(data)
}

func hashKey(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
