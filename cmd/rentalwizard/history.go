package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	json bool
}

var historyCmd = &cobra.Command{
	Use:   "history [session]",
	Short: "Show journaled wizard sessions",
	Long: `Without arguments, list the sessions in the journal. With a session
name (the draft key for new objects, the slug for edits) print what
happened in it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print the history as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	embedded, store, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = embedded.Close() }()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		names, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			_, _ = fmt.Fprintln(out, "No sessions")
			return nil
		}
		for _, n := range names {
			_, _ = fmt.Fprintln(out, n)
		}
		return nil
	}

	h, err := store.LoadHistory(ctx, args[0])
	if err != nil {
		return err
	}
	if historyFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	}
	if h.Events == 0 {
		_, _ = fmt.Fprintf(out, "No events for session %s\n", args[0])
		return nil
	}

	status := "in progress"
	switch {
	case h.Published:
		status = "published"
	case h.Cancelled:
		status = "cancelled"
	}
	_, _ = fmt.Fprintf(out, "Session:  %s (%s, %s)\n", h.Session, h.Mode, status)
	_, _ = fmt.Fprintf(out, "Category: %s\n", h.Category)
	_, _ = fmt.Fprintf(out, "Step:     %d\n", h.Step+1)
	_, _ = fmt.Fprintf(out, "Edits:    %d (blocked %d times)\n", h.Edits, h.Blocked)
	_, _ = fmt.Fprintf(out, "Active:   %s - %s\n", h.StartedAt.Format(time.DateTime), h.UpdatedAt.Format(time.DateTime))
	for _, s := range h.Saves {
		verb := "updated"
		if s.Created {
			verb = "created"
		}
		_, _ = fmt.Fprintf(out, "  %s %s %s (%s)\n", s.At.Format(time.TimeOnly), verb, s.Slug, s.ID)
	}
	for _, f := range h.Failures {
		_, _ = fmt.Fprintf(out, "  failed: %s\n", f)
	}
	return nil
}
