package audit

import (
	"github.com/iksnae/agent-audit/internal"
)

// projectDecisions extracts decision artifacts in event order.
func projectDecisions(segments []*intentSegment) []DecisionArtifact {
	var decisions []DecisionArtifact
	for _, segment := range segments {
		for _, event := range segment.events {
			p, ok := event.Payload.(*internal.DecisionPayload)
			if !ok {
				continue
			}
			decisions = append(decisions, DecisionArtifact{
				EventID:      event.ID,
				IntentID:     segment.id,
				TS:           event.TS,
				Summary:      p.Summary,
				Rationale:    p.Rationale,
				Alternatives: p.Alternatives,
			})
		}
	}
	return decisions
}

// projectAssumptions extracts assumption artifacts in event order.
func projectAssumptions(segments []*intentSegment) []AssumptionArtifact {
	var assumptions []AssumptionArtifact
	for _, segment := range segments {
		for _, event := range segment.events {
			p, ok := event.Payload.(*internal.AssumptionPayload)
			if !ok {
				continue
			}
			assumptions = append(assumptions, AssumptionArtifact{
				EventID:   event.ID,
				IntentID:  segment.id,
				TS:        event.TS,
				Statement: p.Statement,
				Resolved:  p.Resolved,
			})
		}
	}
	return assumptions
}

// projectVerifications extracts verification artifacts in event order.
func projectVerifications(segments []*intentSegment) []VerificationArtifact {
	var verifications []VerificationArtifact
	for _, segment := range segments {
		for _, event := range segment.events {
			p, ok := event.Payload.(*internal.VerificationPayload)
			if !ok {
				continue
			}
			verifications = append(verifications, VerificationArtifact{
				EventID:  event.ID,
				IntentID: segment.id,
				TS:       event.TS,
				Method:   p.Method,
				Result:   p.Result,
				Detail:   p.Detail,
			})
		}
	}
	return verifications
}
