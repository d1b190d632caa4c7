package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-audit/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Long:  `List all sessions in the sessions directory with their prompts and event counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		summaries, err := internal.NewIndexManager(cfg).ListSessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		displaySessions(summaries)
		return nil
	},
}

func displaySessions(summaries []internal.SessionSummary) {
	if len(summaries) == 0 {
		fmt.Println(headerStyle.Render("No sessions found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(summaries)))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Prompt")+"\t"+titleStyle.Render("Events")+"\t"+titleStyle.Render("Started")+"\t"+titleStyle.Render("Status")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, entry := range summaries {
		prompt := entry.Prompt
		if prompt == "" {
			prompt = entry.Goal
		}
		if prompt == "" {
			prompt = "Untitled"
		}
		if len(prompt) > 50 {
			prompt = prompt[:47] + "..."
		}
		prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render(prompt)

		events := countStyle.Render(strconv.Itoa(entry.EventCount))
		started := dateStyle.Render(formatSessionTime(entry.StartedAt))

		status := statusStyle.Render("recording")
		if entry.Ended {
			status = statusStyle.Render("ended")
		}

		// Show short ID (first 18 chars) for readability
		shortID := entry.SessionID
		if len(shortID) > 18 {
			shortID = shortID[:18]
		}
		id := idStyle.Render(shortID)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", id, prompt, events, started, status)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("Tip: Use the full ID (e.g., ") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(summaries[0].SessionID) +
		idStyle.Render(") with `agent-audit review <id>`"))
}

func formatSessionTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	now := time.Now()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
