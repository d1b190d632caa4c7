package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarkdownExporter_Export(t *testing.T) {
	report := reportFixture(t)

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	output := buf.String()

	wantFragments := []string{
		"# Session sess_demo",
		"**Goal:** auth works again",
		"**Prompt:** Fix login bug",
		"**Outcome:** success",
		"**Tokens:** 1100",
		"## Intents",
		"patch the token check",
		"## Decisions",
		"keep jwt",
		"## Risks",
		"`unresolved_assumption` (0.50)",
		"## Hotspots",
		"`internal/auth.go` score 0.75",
		"## Suggested actions",
		"confirm assumption",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}
}

func TestMarkdownExporter_EmptySectionsOmitted(t *testing.T) {
	report := reportFixture(t)
	report.Normalized.Decisions = nil
	report.Normalized.Risks = nil
	report.Normalized.Hotspots = nil
	report.Suggestions = nil

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	output := buf.String()

	for _, heading := range []string{"## Decisions", "## Risks", "## Hotspots", "## Suggested actions"} {
		if strings.Contains(output, heading) {
			t.Errorf("output contains %q for an empty section", heading)
		}
	}
	if !strings.Contains(output, "## Intents") {
		t.Error("output missing the Intents section")
	}
}

func TestMarkdownExporter_IntentTitleFallback(t *testing.T) {
	report := reportFixture(t)
	report.Normalized.Intents[0].Title = ""
	report.Normalized.Intents[0].Description = ""

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "evt_2_aaaa") {
		t.Error("output should fall back to the intent id when title and description are empty")
	}
}
