package internal

import (
	"fmt"
	"time"
)

// IngestOptions controls one ingestion call.
type IngestOptions struct {
	Adapter        string
	MergeSessionID string // explicit merge target, highest precedence
	Dedupe         bool
}

// IngestResult is the outcome contract of the ingest entry point.
type IngestResult struct {
	SessionID         string        `json:"session_id"`
	Adapter           string        `json:"adapter"`
	Inserted          int           `json:"inserted"`
	SkippedDuplicates int           `json:"skipped_duplicates"`
	SessionPath       string        `json:"session_path"`
	RawPath           string        `json:"raw_path"`
	MergeStrategy     MergeStrategy `json:"merge_strategy"`
	MergeConfidence   float64       `json:"merge_confidence,omitempty"`
}

// Ingestor runs raw bytes through adapter, identity resolution, dedup,
// and the merge writer. Safe to re-run: ingesting the same content twice
// with dedupe on inserts nothing the second time.
type Ingestor struct {
	cfg      *Config
	registry *AdapterRegistry
	resolver *Resolver
	writer   *MergeWriter
}

// NewIngestor creates a new Ingestor
func NewIngestor(cfg *Config, registry *AdapterRegistry) *Ingestor {
	return &Ingestor{
		cfg:      cfg,
		registry: registry,
		resolver: NewResolver(cfg),
		writer:   NewMergeWriter(cfg),
	}
}

// Ingest processes one raw session capture.
func (ing *Ingestor) Ingest(raw []byte, opts IngestOptions) (*IngestResult, error) {
	adapter, err := ing.registry.Lookup(opts.Adapter)
	if err != nil {
		return nil, err
	}

	adapted, err := adapter.Parse(raw)
	if err != nil {
		return nil, &AdapterError{Adapter: opts.Adapter, Err: err}
	}
	if adapted.Source == "" {
		adapted.Source = adapter.Name()
	}

	if err := ing.cfg.EnsureSessionsDir(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resolution, err := ing.resolver.Resolve(adapted, opts.MergeSessionID, now)
	if err != nil {
		return nil, err
	}
	LogInfo("Resolved session %s via %s", resolution.SessionID, resolution.Strategy)

	sessionPath := SessionLogPath(ing.cfg.SessionsDir, resolution.SessionID)
	var existing []*CanonicalEvent
	if SessionLogExists(ing.cfg.SessionsDir, resolution.SessionID) {
		existing, err = ReadSessionLog(sessionPath)
		if err != nil {
			return nil, err
		}
	}

	batch := ing.toCanonical(adapted, resolution.SessionID, now)

	var dedup *Deduplicator
	if len(existing) == 0 {
		dedup = NewExactDeduplicator()
	} else {
		dedup = NewSemanticDeduplicator(ing.cfg.DedupBucketMS)
		dedup.Seed(existing)
	}

	haveStart, haveEnd := boundaryFlags(existing)
	var accepted []*CanonicalEvent
	skipped := 0
	for _, event := range batch {
		// A session holds at most one start and one end, whatever the
		// dedup strategy says.
		if event.Kind == KindSessionStart {
			if haveStart {
				skipped++
				continue
			}
			haveStart = true
		}
		if event.Kind == KindSessionEnd {
			if haveEnd {
				skipped++
				continue
			}
			haveEnd = true
		}

		if opts.Dedupe && !dedup.Admit(event) {
			skipped++
			continue
		}
		if !opts.Dedupe {
			dedup.Admit(event)
		}
		accepted = append(accepted, event)
	}

	result, err := ing.writer.Write(resolution.SessionID, existing, accepted)
	if err != nil {
		return nil, err
	}
	LogDebug("Persisted %d event(s) via %s (%d total)", len(accepted), result.Mode, result.Total)

	rawPath := RawSidecarPath(ing.cfg.SessionsDir, resolution.SessionID, adapted.Source)
	if err := WriteRawSidecar(rawPath, raw); err != nil {
		// Sidecars are replay material only; the canonical log already
		// landed and stays authoritative.
		LogWarn("Failed to write raw sidecar %s: %v", rawPath, err)
	}

	return &IngestResult{
		SessionID:         resolution.SessionID,
		Adapter:           opts.Adapter,
		Inserted:          len(accepted),
		SkippedDuplicates: skipped,
		SessionPath:       sessionPath,
		RawPath:           rawPath,
		MergeStrategy:     resolution.Strategy,
		MergeConfidence:   resolution.Confidence,
	}, nil
}

// toCanonical converts the adapted events to canonical ones without seq
// or id, which the writer assigns. Session boundary events are
// synthesized from session metadata when the adapter did not emit them.
func (ing *Ingestor) toCanonical(adapted *AdaptedSession, sessionID string, now time.Time) []*CanonicalEvent {
	// Anchor synthesized events to the capture's own timeline. Using
	// wall-clock time here would shift the fingerprint on every run
	// and put the start event after the events it opens.
	fallbackTS := adapted.EarliestTimestamp()
	if fallbackTS.IsZero() {
		fallbackTS = now
	}

	var events []*CanonicalEvent
	batchHasStart := false
	batchHasEnd := false
	for _, ae := range adapted.Events {
		ts := fallbackTS
		if ae.TS != nil && !ae.TS.IsZero() {
			ts = *ae.TS
		}
		payload := ae.Payload
		if payload == nil {
			payload = GenericPayload{}
		}
		events = append(events, &CanonicalEvent{
			SessionID:     sessionID,
			TS:            ts.UTC(),
			Kind:          ae.Kind,
			Actor:         ae.Actor,
			Scope:         ae.Scope,
			Payload:       payload,
			Derived:       ae.Derived,
			Confidence:    ae.Confidence,
			Visibility:    ae.Visibility,
			SchemaVersion: SchemaVersion,
		})
		switch ae.Kind {
		case KindSessionStart:
			batchHasStart = true
		case KindSessionEnd:
			batchHasEnd = true
		}
	}

	if !batchHasStart && (adapted.UserPrompt != "" || adapted.Goal != "" || adapted.StartedAt != nil) {
		start := &CanonicalEvent{
			SessionID: sessionID,
			TS:        fallbackTS.UTC(),
			Kind:      KindSessionStart,
			Actor:     Actor{Type: "system"},
			Payload: &SessionStartPayload{
				UserPrompt: adapted.UserPrompt,
				Goal:       adapted.Goal,
				Source:     adapted.Source,
			},
			Derived:       true,
			SchemaVersion: SchemaVersion,
		}
		events = append([]*CanonicalEvent{start}, events...)
	}
	if !batchHasEnd && adapted.EndedAt != nil && !adapted.EndedAt.IsZero() {
		events = append(events, &CanonicalEvent{
			SessionID:     sessionID,
			TS:            adapted.EndedAt.UTC(),
			Kind:          KindSessionEnd,
			Actor:         Actor{Type: "system"},
			Payload:       &SessionEndPayload{},
			Derived:       true,
			SchemaVersion: SchemaVersion,
		})
	}

	return events
}

func boundaryFlags(events []*CanonicalEvent) (haveStart, haveEnd bool) {
	for _, event := range events {
		switch event.Kind {
		case KindSessionStart:
			haveStart = true
		case KindSessionEnd:
			haveEnd = true
		}
	}
	return haveStart, haveEnd
}

// String implements fmt.Stringer for log-friendly ingest summaries.
func (r *IngestResult) String() string {
	return fmt.Sprintf("session=%s strategy=%s inserted=%d skipped=%d",
		r.SessionID, r.MergeStrategy, r.Inserted, r.SkippedDuplicates)
}
