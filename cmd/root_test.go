package cmd

import (
	"bytes"
	"strings"
	"testing"
)

// resetCommandState restores the package-level flag targets that cobra
// mutates, so one test's flags do not leak into the next.
func resetCommandState() {
	verbose = false
	sessionsDir = ""
	ingestAdapter = "agent-jsonl"
	ingestMergeID = ""
	ingestDedupe = true
	recordPrompt = ""
	recordGoal = ""
	recordResume = ""
	recordKind = "note"
	recordPayload = "{}"
	reviewFormat = "md"
	reviewOutput = ""
}

// executeCommand runs the root command with the given args and returns
// whatever it wrote to its configured output stream.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommandState()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantErr: false,
			wantOut: "dev",
		},
		{
			name:    "help flag",
			args:    []string{"--help"},
			wantErr: false,
			wantOut: "agent-audit",
		},
		{
			name:    "unknown command",
			args:    []string{"frobnicate"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("output %q does not contain %q", out, tt.wantOut)
			}
		})
	}
}

func TestLoadConfig_SessionsDirFlag(t *testing.T) {
	resetCommandState()
	defer resetCommandState()

	sessionsDir = ""
	if got := loadConfig(); got.SessionsDir == "" {
		t.Error("loadConfig() with no flag returned empty SessionsDir, want default")
	}

	sessionsDir = "/tmp/agent-audit-test-sessions"
	if got := loadConfig(); got.SessionsDir != "/tmp/agent-audit-test-sessions" {
		t.Errorf("loadConfig() SessionsDir = %q, want flag value", got.SessionsDir)
	}
}
