package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iksnae/agent-audit/internal"
	"github.com/spf13/cobra"
)

var (
	recordPrompt  string
	recordGoal    string
	recordResume  string
	recordKind    string
	recordPayload string
)

// recordCmd groups the live-recording subcommands
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a live session",
	Long: `Record a live agent session event by event.

One session is active at a time; its cursor lives next to the logs and
survives process restarts. The canonical log on disk is the source of
truth, the cursor only remembers where recording left off.`,
}

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start (or resume) a recording session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := internal.NewSessionStore(cfg)

		if recordResume != "" {
			ctx, err := store.ResumeSession(recordResume)
			if err != nil {
				return fmt.Errorf("failed to resume session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.SessionID)
			return nil
		}

		ctx, err := store.StartSession(recordPrompt, recordGoal, time.Now())
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ctx.SessionID)
		return nil
	},
}

var recordEventCmd = &cobra.Command{
	Use:   "event",
	Short: "Append one event to the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := internal.NewSessionStore(cfg)

		ctx, err := store.LoadActive()
		if err != nil {
			return err
		}

		kind := internal.EventKind(recordKind)
		payload, err := internal.DecodePayload(kind, json.RawMessage(recordPayload))
		if err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}

		event, err := store.CreateEvent(ctx, kind, payload, time.Now())
		if err != nil {
			return err
		}
		if err := store.PersistEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to persist event: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), event.ID)
		return nil
	},
}

var recordEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := internal.NewSessionStore(cfg)

		ctx, err := store.LoadActive()
		if err != nil {
			return err
		}
		if ctx == nil {
			return &internal.NoActiveSessionError{Op: "end_session"}
		}

		if err := store.EndActiveSession(ctx, time.Now()); err != nil {
			return fmt.Errorf("failed to end session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ctx.SessionID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordEventCmd)
	recordCmd.AddCommand(recordEndCmd)

	recordStartCmd.Flags().StringVar(&recordPrompt, "prompt", "", "User prompt that started the session")
	recordStartCmd.Flags().StringVar(&recordGoal, "goal", "", "Session goal")
	recordStartCmd.Flags().StringVar(&recordResume, "resume", "", "Resume an existing session by id")

	recordEventCmd.Flags().StringVar(&recordKind, "kind", "note", "Event kind")
	recordEventCmd.Flags().StringVar(&recordPayload, "payload", "{}", "Event payload as a JSON object")
}
