// Package export renders review reports in reviewer-consumable
// formats: json, yaml, markdown, and a jsonl replay of the canonical
// events.
package export

import (
	"fmt"
	"io"

	"github.com/iksnae/agent-audit/internal/audit"
	"github.com/iksnae/agent-audit/internal/recommend"
)

// ReviewReport bundles everything a reviewer sees for one session.
type ReviewReport struct {
	Normalized  *audit.SessionNormalized `json:"normalized" yaml:"normalized"`
	Suggestions []recommend.Suggestion   `json:"suggestions" yaml:"suggestions"`
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(report *ReviewReport, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md, jsonl)", format)
	}
}
