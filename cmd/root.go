package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/agent-audit/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	sessionsDir string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agent-audit",
	Short: "Record and review AI-agent work sessions",
	Long: `agent-audit turns raw AI-agent session captures into a reviewable
audit record.

Raw captures from different tools are ingested through adapters, merged
into one canonical event log per logical session, and normalized into
reviewer artifacts: intents, decisions, risks, hotspots, and suggested
follow-up actions.

Quick Start:
  agent-audit ingest capture.jsonl --adapter agent-jsonl   # Ingest a capture
  agent-audit list                                         # List sessions
  agent-audit review <session-id> --format md              # Review a session

Live recording:
  agent-audit record start --prompt "Fix the login bug"
  agent-audit record event --kind file_op --payload '{"op":"edit","path":"auth.go"}'
  agent-audit record end`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// loadConfig builds the effective config: environment overrides on the
// defaults, then the --sessions-dir flag on top.
func loadConfig() *internal.Config {
	cfg := internal.LoadConfig()
	if sessionsDir != "" {
		cfg.SessionsDir = sessionsDir
	}
	return cfg
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&sessionsDir, "sessions-dir", "", "Custom sessions directory (default: $AGENT_AUDIT_SESSIONS_DIR or ~/.agent-audit/sessions)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
