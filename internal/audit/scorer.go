package audit

import (
	"fmt"
	"math"
	"sort"
)

// ScorerInput is everything a risk scorer is allowed to see: fully
// normalized artifacts, never raw events. Proprietary scorers plug in
// behind the Scorer interface without touching the pipeline.
type ScorerInput struct {
	Impacts       []ImpactArtifact
	Assumptions   []AssumptionArtifact
	Decisions     []DecisionArtifact
	Revisions     []RevisionArtifact
	Verifications []VerificationArtifact
}

// Scorer turns normalized artifacts into ranked risks and hotspots.
type Scorer interface {
	Score(input ScorerInput) ([]RiskArtifact, []HotspotArtifact)
}

// HeuristicScorer is the built-in scorer: revisions drive hotspots,
// while unresolved assumptions, failed verifications, and large
// unverified impacts drive risks.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a new HeuristicScorer
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score implements Scorer.
func (s *HeuristicScorer) Score(input ScorerInput) ([]RiskArtifact, []HotspotArtifact) {
	return s.risks(input), s.hotspots(input.Revisions)
}

func (s *HeuristicScorer) risks(input ScorerInput) []RiskArtifact {
	var risks []RiskArtifact
	nextID := 0
	mint := func() string {
		nextID++
		return fmt.Sprintf("risk_%d", nextID)
	}

	for _, assumption := range input.Assumptions {
		if assumption.Resolved {
			continue
		}
		risks = append(risks, RiskArtifact{
			ID:       mint(),
			Category: "unresolved_assumption",
			Severity: 0.5,
			Summary:  fmt.Sprintf("unresolved assumption: %s", assumption.Statement),
			IntentID: assumption.IntentID,
		})
	}

	for _, verification := range input.Verifications {
		if verification.Result != "fail" {
			continue
		}
		risks = append(risks, RiskArtifact{
			ID:       mint(),
			Category: "failed_verification",
			Severity: 0.8,
			Summary:  fmt.Sprintf("verification failed (%s)", verification.Method),
			IntentID: verification.IntentID,
		})
	}

	verifiedIntents := make(map[string]bool)
	for _, verification := range input.Verifications {
		if verification.Result == "pass" {
			verifiedIntents[verification.IntentID] = true
		}
	}
	for _, impact := range input.Impacts {
		if impact.IntentID == "" || impact.BlastRadius != BlastLarge {
			continue
		}
		if verifiedIntents[impact.IntentID] {
			continue
		}
		risks = append(risks, RiskArtifact{
			ID:       mint(),
			Category: "unverified_large_change",
			Severity: 0.7,
			Summary: fmt.Sprintf("large blast radius (%d files) without a passing verification",
				len(impact.Files)),
			IntentID: impact.IntentID,
		})
	}

	for _, revision := range input.Revisions {
		if revision.Type != RevisionCreateThenDelete {
			continue
		}
		risks = append(risks, RiskArtifact{
			ID:       mint(),
			Category: "churned_file",
			Severity: 0.4,
			Summary:  fmt.Sprintf("%s was created and deleted in one session", revision.Path),
			Path:     revision.Path,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Severity > risks[j].Severity
	})
	return risks
}

func (s *HeuristicScorer) hotspots(revisions []RevisionArtifact) []HotspotArtifact {
	type spot struct {
		edits   int
		score   float64
		reasons []string
	}
	spots := make(map[string]*spot)
	touch := func(path string) *spot {
		if spots[path] == nil {
			spots[path] = &spot{}
		}
		return spots[path]
	}

	for _, revision := range revisions {
		if revision.Path == "" {
			continue
		}
		switch revision.Type {
		case RevisionRepeatFileEdits:
			sp := touch(revision.Path)
			sp.edits = revision.Count
			sp.score += math.Min(float64(revision.Count)*0.15, 0.6)
			sp.reasons = append(sp.reasons, "repeated edits")
		case RevisionLargeAfterRecent:
			sp := touch(revision.Path)
			sp.score += 0.3
			sp.reasons = append(sp.reasons, "large change after recent change")
		case RevisionCreateThenDelete:
			sp := touch(revision.Path)
			sp.score += 0.2
			sp.reasons = append(sp.reasons, "created then deleted")
		}
	}

	paths := make([]string, 0, len(spots))
	for path := range spots {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hotspots := make([]HotspotArtifact, 0, len(paths))
	for _, path := range paths {
		sp := spots[path]
		hotspots = append(hotspots, HotspotArtifact{
			Path:      path,
			EditCount: sp.edits,
			Score:     math.Min(sp.score, 1.0),
			Reasons:   sp.reasons,
		})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Score > hotspots[j].Score
	})
	return hotspots
}
