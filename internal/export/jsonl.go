package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports the canonical events in JSONL format (one event
// per line, seq order), a replayable view without the derived artifacts
type JSONLExporter struct{}

// Export exports a review report's events to JSONL format
func (e *JSONLExporter) Export(report *ReviewReport, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, event := range report.Normalized.Events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
