package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports review reports in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a review report to JSON format
func (e *JSONExporter) Export(report *ReviewReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
