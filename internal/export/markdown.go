package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports review reports in Markdown format
type MarkdownExporter struct{}

// Export exports a review report to Markdown format
func (e *MarkdownExporter) Export(report *ReviewReport, w io.Writer) error {
	n := report.Normalized
	meta := n.Metadata

	_, _ = fmt.Fprintf(w, "# Session %s\n\n", meta.SessionID)

	if meta.Goal != "" {
		_, _ = fmt.Fprintf(w, "**Goal:** %s  \n", meta.Goal)
	}
	if meta.UserPrompt != "" {
		_, _ = fmt.Fprintf(w, "**Prompt:** %s  \n", meta.UserPrompt)
	}
	if meta.Outcome != "" {
		_, _ = fmt.Fprintf(w, "**Outcome:** %s  \n", meta.Outcome)
	}
	_, _ = fmt.Fprintf(w, "**Events:** %d\n\n", meta.EventCount)
	if n.TokenUsage.Total.TotalTokens > 0 {
		_, _ = fmt.Fprintf(w, "**Tokens:** %d (in %d / out %d)\n\n",
			n.TokenUsage.Total.TotalTokens,
			n.TokenUsage.Total.InputTokens,
			n.TokenUsage.Total.OutputTokens)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	_, _ = fmt.Fprintf(w, "## Intents\n\n")
	for _, intent := range n.Intents {
		title := intent.Title
		if title == "" {
			title = intent.Description
		}
		if title == "" {
			title = intent.ID
		}
		_, _ = fmt.Fprintf(w, "- **%s** - %s (%d events)\n", title, intent.Status, intent.EventCount)
	}
	_, _ = fmt.Fprintf(w, "\n")

	if len(n.Decisions) > 0 {
		_, _ = fmt.Fprintf(w, "## Decisions\n\n")
		for _, decision := range n.Decisions {
			_, _ = fmt.Fprintf(w, "- %s", decision.Summary)
			if decision.Rationale != "" {
				_, _ = fmt.Fprintf(w, " _(%s)_", decision.Rationale)
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if len(n.Risks) > 0 {
		_, _ = fmt.Fprintf(w, "## Risks\n\n")
		for _, risk := range n.Risks {
			_, _ = fmt.Fprintf(w, "- `%s` (%.2f): %s\n", risk.Category, risk.Severity, risk.Summary)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if len(n.Hotspots) > 0 {
		_, _ = fmt.Fprintf(w, "## Hotspots\n\n")
		for _, hotspot := range n.Hotspots {
			_, _ = fmt.Fprintf(w, "- `%s` score %.2f (%s)\n",
				hotspot.Path, hotspot.Score, strings.Join(hotspot.Reasons, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if len(report.Suggestions) > 0 {
		_, _ = fmt.Fprintf(w, "## Suggested actions\n\n")
		for i, suggestion := range report.Suggestions {
			_, _ = fmt.Fprintf(w, "%d. %s", i+1, suggestion.Summary)
			var actions []string
			for _, action := range suggestion.Actions {
				if action.Target != "" {
					actions = append(actions, fmt.Sprintf("%s %s", action.Type, action.Target))
				} else {
					actions = append(actions, string(action.Type))
				}
			}
			if len(actions) > 0 {
				_, _ = fmt.Fprintf(w, " - %s", strings.Join(actions, "; "))
			}
			_, _ = fmt.Fprintf(w, "\n")
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
