package audit

import (
	"github.com/iksnae/agent-audit/internal"
)

// intentSegment groups the events owned by one intent boundary.
type intentSegment struct {
	id          string
	title       string
	description string
	synthetic   bool
	events      []*internal.CanonicalEvent
}

// segmentIntents splits a seq-sorted event list at intent boundaries.
// Every intent event opens a new segment; every other event belongs to
// the most recent segment at or before its position. Events arriving
// before the first intent land in a synthetic fallback segment.
func segmentIntents(events []*internal.CanonicalEvent) []*intentSegment {
	var segments []*intentSegment
	var current *intentSegment

	for _, event := range events {
		if event.Kind == internal.KindIntent {
			segment := &intentSegment{id: event.ID}
			if p, ok := event.Payload.(*internal.IntentPayload); ok {
				segment.title = p.Title
				segment.description = p.Description
			}
			segment.events = append(segment.events, event)
			segments = append(segments, segment)
			current = segment
			continue
		}

		if current == nil {
			current = &intentSegment{id: SyntheticIntentID, synthetic: true}
			segments = append(segments, current)
		}
		current.events = append(current.events, event)
	}

	return segments
}

// intentArtifacts computes the ordered intent list with statuses.
func intentArtifacts(segments []*intentSegment) []IntentArtifact {
	artifacts := make([]IntentArtifact, 0, len(segments))
	for i, segment := range segments {
		artifact := IntentArtifact{
			ID:          segment.id,
			Title:       segment.title,
			Description: segment.description,
			Synthetic:   segment.synthetic,
			EventCount:  len(segment.events),
			Status:      intentStatus(segment, i < len(segments)-1),
		}
		if len(segment.events) > 0 {
			artifact.StartSeq = segment.events[0].Seq
			artifact.EndSeq = segment.events[len(segment.events)-1].Seq
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts
}

// intentStatus applies the completion rules: a passing verification
// completes the intent; superseded file work with no pass abandons it;
// everything else is partial.
func intentStatus(segment *intentSegment, superseded bool) IntentStatus {
	didFileWork := false
	for _, event := range segment.events {
		if event.Kind == internal.KindFileOp {
			didFileWork = true
		}
		if p, ok := event.Payload.(*internal.VerificationPayload); ok && p.Result == "pass" {
			return IntentCompleted
		}
	}
	if superseded && didFileWork {
		return IntentAbandoned
	}
	return IntentPartial
}
