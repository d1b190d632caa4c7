package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-audit/internal"
	"github.com/spf13/cobra"
)

var (
	showKindStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	showSeqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the canonical event log of a session",
	Long:  `Print a session's canonical events in replay (seq) order.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessionID := args[0]

		path := internal.SessionLogPath(cfg.SessionsDir, sessionID)
		events, err := internal.ReadSessionLog(path)
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		internal.SortEventsBySeq(events)

		fmt.Println(headerStyle.Render(fmt.Sprintf("Session %s (%d events)", sessionID, len(events))))
		fmt.Println()

		for _, event := range events {
			line := fmt.Sprintf("%s %s %s actor=%s",
				showSeqStyle.Render(fmt.Sprintf("#%03d", event.Seq)),
				dateStyle.Render(event.TS.Format("15:04:05")),
				showKindStyle.Render(string(event.Kind)),
				event.Actor.Type)
			if summary := eventSummary(event); summary != "" {
				line += "  " + summary
			}
			fmt.Println(line)
		}
		return nil
	},
}

// eventSummary renders a one-line description of an event's payload.
func eventSummary(event *internal.CanonicalEvent) string {
	var text string
	switch p := event.Payload.(type) {
	case *internal.SessionStartPayload:
		text = firstNonEmpty(p.UserPrompt, p.Goal)
	case *internal.IntentPayload:
		text = firstNonEmpty(p.Title, p.Description)
	case *internal.DecisionPayload:
		text = p.Summary
	case *internal.AssumptionPayload:
		text = p.Statement
	case *internal.VerificationPayload:
		text = fmt.Sprintf("%s: %s", p.Method, p.Result)
	case *internal.FileOpPayload:
		text = fmt.Sprintf("%s %s", p.Op, p.Path)
	case *internal.ToolCallPayload:
		text = firstNonEmpty(p.Action+" "+p.Target, p.Action)
	case *internal.ArtifactPayload:
		text = p.ArtifactType
	case *internal.NotePayload:
		text = p.Text
	}
	if len(text) > 70 {
		text = text[:67] + "..."
	}
	return text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(showCmd)
}
