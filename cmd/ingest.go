package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/iksnae/agent-audit/internal"
	"github.com/spf13/cobra"
)

var (
	ingestAdapter string
	ingestMergeID string
	ingestDedupe  bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a raw session capture",
	Long: `Ingest a raw session capture through an adapter.

The capture is resolved to a logical session (merging with an existing
one when the prompt and timing fingerprints match), deduplicated, and
persisted as a canonical event log. Reads stdin when no file is given.

Adapters:
  agent-jsonl   neutral JSONL capture (one event object per line)
  cursor        Cursor globalStorage locator: {"db_path": ..., "composer_id": ...}`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read capture: %w", err)
			}
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		cfg := loadConfig()
		ingestor := internal.NewIngestor(cfg, internal.NewAdapterRegistry())

		result, err := ingestor.Ingest(raw, internal.IngestOptions{
			Adapter:        ingestAdapter,
			MergeSessionID: ingestMergeID,
			Dedupe:         ingestDedupe,
		})
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestAdapter, "adapter", "agent-jsonl", "Adapter to parse the capture with")
	ingestCmd.Flags().StringVar(&ingestMergeID, "merge-session", "", "Merge into this session id, bypassing identity resolution")
	ingestCmd.Flags().BoolVar(&ingestDedupe, "dedupe", true, "Skip events already present in the target session")
}
