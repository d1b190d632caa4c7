// Package recommend turns normalized audit artifacts into a short,
// ranked list of concrete next steps for a reviewer.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iksnae/agent-audit/internal/audit"
)

// Caps keeping the final list short and varied.
const (
	maxPerArtifact = 3
	maxTotal       = 5
	maxPerCategory = 3
)

// ActionType names a concrete reviewer action
type ActionType string

const (
	ActionOpenFile        ActionType = "open_file"
	ActionOpenDiff        ActionType = "open_diff"
	ActionRunVerification ActionType = "run_verification"
	ActionRequestAnalysis ActionType = "request_analysis"
	ActionGenerateTests   ActionType = "generate_tests"
	ActionPromptAgent     ActionType = "prompt_agent"
)

// Action is one concrete step with an optional target (a path, an
// intent id, a free-form prompt).
type Action struct {
	Type   ActionType `json:"type"`
	Target string     `json:"target,omitempty"`
}

// Suggestion is a ranked recommendation derived from one artifact.
type Suggestion struct {
	SourceType string   `json:"source_type"` // "risk", "hotspot", "assumption"
	SourceRef  string   `json:"source_ref"`
	Category   string   `json:"category"`
	Summary    string   `json:"summary"`
	Actions    []Action `json:"actions"`
	Priority   int      `json:"priority"` // 1 = highest
	Confidence float64  `json:"confidence"`
}

// Engine maps risks, hotspots, and unresolved assumptions to
// suggestions, then dedupes, caps, and ranks them.
type Engine struct{}

// NewEngine creates a new Engine
func NewEngine() *Engine {
	return &Engine{}
}

// Build produces the final ranked suggestion list for one session.
func (e *Engine) Build(normalized *audit.SessionNormalized) []Suggestion {
	var suggestions []Suggestion
	for _, risk := range normalized.Risks {
		suggestions = append(suggestions, capPerArtifact(e.fromRisk(risk))...)
	}
	for _, hotspot := range normalized.Hotspots {
		suggestions = append(suggestions, capPerArtifact(e.fromHotspot(hotspot))...)
	}
	for _, assumption := range normalized.Assumptions {
		if assumption.Resolved {
			continue
		}
		suggestions = append(suggestions, capPerArtifact(e.fromAssumption(assumption))...)
	}

	suggestions = dedupe(suggestions)
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Priority != suggestions[j].Priority {
			return suggestions[i].Priority < suggestions[j].Priority
		}
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	perCategory := make(map[string]int)
	final := make([]Suggestion, 0, maxTotal)
	for _, suggestion := range suggestions {
		if len(final) == maxTotal {
			break
		}
		if perCategory[suggestion.Category] == maxPerCategory {
			continue
		}
		perCategory[suggestion.Category]++
		final = append(final, suggestion)
	}
	return final
}

func (e *Engine) fromRisk(risk audit.RiskArtifact) []Suggestion {
	priority := priorityFromSeverity(risk.Severity)
	base := Suggestion{
		SourceType: "risk",
		SourceRef:  risk.ID,
		Category:   risk.Category,
		Priority:   priority,
		Confidence: risk.Severity,
	}

	var suggestions []Suggestion
	switch risk.Category {
	case "failed_verification":
		s := base
		s.Summary = "re-run the failed verification"
		s.Actions = []Action{{Type: ActionRunVerification, Target: risk.IntentID}}
		suggestions = append(suggestions, s)
	case "unverified_large_change":
		run := base
		run.Summary = "verify the large change"
		run.Actions = []Action{{Type: ActionRunVerification, Target: risk.IntentID}}
		tests := base
		tests.Summary = "generate tests for the unverified change"
		tests.Actions = []Action{{Type: ActionGenerateTests, Target: risk.IntentID}}
		suggestions = append(suggestions, run, tests)
	case "churned_file":
		s := base
		s.Summary = fmt.Sprintf("inspect churn on %s", risk.Path)
		s.Actions = []Action{{Type: ActionOpenDiff, Target: risk.Path}}
		suggestions = append(suggestions, s)
	default:
		s := base
		s.Summary = risk.Summary
		s.Actions = []Action{{Type: ActionRequestAnalysis, Target: risk.IntentID}}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

func (e *Engine) fromHotspot(hotspot audit.HotspotArtifact) []Suggestion {
	open := Suggestion{
		SourceType: "hotspot",
		SourceRef:  hotspot.Path,
		Category:   "hotspot",
		Summary:    fmt.Sprintf("review hotspot %s (%s)", hotspot.Path, strings.Join(hotspot.Reasons, ", ")),
		Actions: []Action{
			{Type: ActionOpenFile, Target: hotspot.Path},
			{Type: ActionOpenDiff, Target: hotspot.Path},
		},
		Priority:   2,
		Confidence: hotspot.Score,
	}
	tests := Suggestion{
		SourceType: "hotspot",
		SourceRef:  hotspot.Path,
		Category:   "hotspot",
		Summary:    fmt.Sprintf("add test coverage for %s", hotspot.Path),
		Actions:    []Action{{Type: ActionGenerateTests, Target: hotspot.Path}},
		Priority:   3,
		Confidence: hotspot.Score * 0.8,
	}
	return []Suggestion{open, tests}
}

func (e *Engine) fromAssumption(assumption audit.AssumptionArtifact) []Suggestion {
	return []Suggestion{{
		SourceType: "assumption",
		SourceRef:  assumption.EventID,
		Category:   "unresolved_assumption",
		Summary:    fmt.Sprintf("confirm assumption: %s", assumption.Statement),
		Actions: []Action{
			{Type: ActionPromptAgent, Target: assumption.Statement},
			{Type: ActionRequestAnalysis, Target: assumption.IntentID},
		},
		Priority:   3,
		Confidence: 0.6,
	}}
}

func priorityFromSeverity(severity float64) int {
	switch {
	case severity >= 0.75:
		return 1
	case severity >= 0.5:
		return 2
	default:
		return 3
	}
}

func capPerArtifact(suggestions []Suggestion) []Suggestion {
	if len(suggestions) > maxPerArtifact {
		return suggestions[:maxPerArtifact]
	}
	return suggestions
}

// dedupe drops suggestions with identical source type, category, and
// action set, keeping the first occurrence.
func dedupe(suggestions []Suggestion) []Suggestion {
	seen := make(map[string]bool)
	var unique []Suggestion
	for _, suggestion := range suggestions {
		parts := []string{suggestion.SourceType, suggestion.Category}
		for _, action := range suggestion.Actions {
			parts = append(parts, string(action.Type), action.Target)
		}
		key := strings.Join(parts, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, suggestion)
	}
	return unique
}
