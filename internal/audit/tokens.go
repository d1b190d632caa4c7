package audit

import (
	"github.com/iksnae/agent-audit/internal"
)

// sumTokenUsage totals token readings across the session, grouped by
// usage category and by owning intent. Any payload carrying a usage or
// llm_usage object counts, not just checkpoint events.
func sumTokenUsage(segments []*intentSegment) TokenUsageSummary {
	summary := TokenUsageSummary{
		ByCategory: make(map[string]TokenTotals),
		ByIntent:   make(map[string]TokenTotals),
	}

	for _, segment := range segments {
		for _, event := range segment.events {
			usage := internal.PayloadUsage(event.Payload)
			if usage == nil {
				continue
			}

			summary.Total.add(usage)

			category := usage.Category
			if category == "" {
				category = "inference"
			}
			byCategory := summary.ByCategory[category]
			byCategory.add(usage)
			summary.ByCategory[category] = byCategory

			intentID := segment.id
			if p, ok := event.Payload.(*internal.TokenUsagePayload); ok && p.IntentID != "" {
				intentID = p.IntentID
			}
			byIntent := summary.ByIntent[intentID]
			byIntent.add(usage)
			summary.ByIntent[intentID] = byIntent
		}
	}

	if len(summary.ByCategory) == 0 {
		summary.ByCategory = nil
	}
	if len(summary.ByIntent) == 0 {
		summary.ByIntent = nil
	}
	return summary
}
