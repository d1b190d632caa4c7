package audit

import (
	"github.com/iksnae/agent-audit/internal"
)

// Pipeline derives the full reviewer projection of a session. It holds
// no mutable state and is safe to re-run, or to run concurrently on
// different sessions.
type Pipeline struct {
	cfg    *internal.Config
	scorer Scorer
}

// NewPipeline creates a normalization pipeline. A nil scorer selects
// the built-in heuristic scorer.
func NewPipeline(cfg *internal.Config, scorer Scorer) *Pipeline {
	if scorer == nil {
		scorer = NewHeuristicScorer()
	}
	return &Pipeline{cfg: cfg, scorer: scorer}
}

// Normalize builds a SessionNormalized from the full canonical event
// list of one session. The result is a pure projection of the input:
// rebuilt from scratch every run, never patched incrementally.
func (p *Pipeline) Normalize(sessionID string, events []*internal.CanonicalEvent) *SessionNormalized {
	sorted := make([]*internal.CanonicalEvent, len(events))
	copy(sorted, events)
	internal.SortEventsBySeq(sorted)

	segments := segmentIntents(sorted)

	normalized := &SessionNormalized{
		Metadata:      buildMetadata(sessionID, sorted),
		Intents:       intentArtifacts(segments),
		Decisions:     projectDecisions(segments),
		Assumptions:   projectAssumptions(segments),
		Verifications: projectVerifications(segments),
		Revisions:     detectRevisions(segments, p.cfg),
		Impacts:       deriveImpacts(segments),
		TokenUsage:    sumTokenUsage(segments),
		Events:        sorted,
	}

	normalized.Risks, normalized.Hotspots = p.scorer.Score(ScorerInput{
		Impacts:       normalized.Impacts,
		Assumptions:   normalized.Assumptions,
		Decisions:     normalized.Decisions,
		Revisions:     normalized.Revisions,
		Verifications: normalized.Verifications,
	})

	return normalized
}

// NormalizeSession loads a session log and normalizes it.
func (p *Pipeline) NormalizeSession(sessionID string) (*SessionNormalized, error) {
	path := internal.SessionLogPath(p.cfg.SessionsDir, sessionID)
	events, err := internal.ReadSessionLog(path)
	if err != nil {
		return nil, err
	}
	return p.Normalize(sessionID, events), nil
}

func buildMetadata(sessionID string, events []*internal.CanonicalEvent) SessionMetadata {
	metadata := SessionMetadata{
		SessionID:     sessionID,
		EventCount:    len(events),
		SchemaVersion: internal.SchemaVersion,
	}

	for _, event := range events {
		switch p := event.Payload.(type) {
		case *internal.SessionStartPayload:
			metadata.StartedAt = event.TS
			metadata.Goal = p.Goal
			metadata.UserPrompt = p.UserPrompt
			metadata.Repo = p.Repo
			metadata.Branch = p.Branch
		case *internal.SessionEndPayload:
			metadata.EndedAt = event.TS
			metadata.Outcome = p.Outcome
		}
	}

	if metadata.StartedAt.IsZero() && len(events) > 0 {
		metadata.StartedAt = events[0].TS
	}
	return metadata
}
