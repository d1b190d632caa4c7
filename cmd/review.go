package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/agent-audit/internal"
	"github.com/iksnae/agent-audit/internal/audit"
	"github.com/iksnae/agent-audit/internal/export"
	"github.com/iksnae/agent-audit/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	reviewFormat string
	reviewOutput string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <session-id>",
	Short: "Normalize a session into reviewer artifacts",
	Long: `Run the audit normalization pipeline on a session and print the
result: intents with statuses, decisions, assumptions, verifications,
risky revision patterns, impact classification, risks, hotspots, token
usage, and a ranked list of suggested reviewer actions.

The report is a pure projection of the canonical log and can be
regenerated at any time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessionID := args[0]

		pipeline := audit.NewPipeline(cfg, nil)
		normalized, err := pipeline.NormalizeSession(sessionID)
		if err != nil {
			return fmt.Errorf("normalization failed: %w", err)
		}

		report := &export.ReviewReport{
			Normalized:  normalized,
			Suggestions: recommend.NewEngine().Build(normalized),
		}

		exporter, err := export.NewExporter(reviewFormat)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reviewOutput != "" {
			f, err := os.Create(reviewOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		if err := exporter.Export(report, out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if reviewOutput != "" {
			internal.LogInfo("Wrote review to %s", reviewOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewFormat, "format", "md", "Output format (json, yaml, md, jsonl)")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "Write to file instead of stdout")
}
