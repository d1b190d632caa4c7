package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports review reports in YAML format
type YAMLExporter struct{}

// Export exports a review report to YAML format
func (e *YAMLExporter) Export(report *ReviewReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
