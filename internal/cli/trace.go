package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/unidir/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Action   string // optional - filter to actions with this prefix
}

// SessionSummary is one line of the session listing.
type SessionSummary struct {
	ID        string `json:"id"`
	App       string `json:"app"`
	CreatedAt string `json:"created_at"`
}

// TraceEntry is one reduced action in a session timeline.
type TraceEntry struct {
	Seq       int64           `json:"seq"`
	Action    string          `json:"action"`
	StateHash string          `json:"state_hash"`
	State     json.RawMessage `json:"state,omitempty"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  SessionSummary  `json:"session"`
	Timeline []TraceEntry    `json:"timeline"`
	Final    json.RawMessage `json:"final_state,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a journal",
		Long: `Inspect a journal written by run --db.

Without --session, lists every recorded session. With --session, prints
the session's timeline: each reduced action in order together with the
hash of the state it produced. --verbose includes the states themselves.

Examples:
  unidir trace --db ./unidir.db
  unidir trace --db ./unidir.db --session 0190b2c4-...
  unidir trace --db ./unidir.db --session 0190b2c4-... --action todo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID to print")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only show actions starting with this prefix")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	// journal.Open would create a missing database.
	if _, err := os.Stat(opts.Database); errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	if opts.Session == "" {
		sessions, err := j.ListSessions(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to list sessions", err)
		}
		summaries := make([]SessionSummary, 0, len(sessions))
		for _, s := range sessions {
			summaries = append(summaries, summarize(s))
		}
		return outputSessions(cmd, formatter, summaries)
	}

	session, err := j.ReadSession(ctx, opts.Session)
	if journal.IsSessionNotFound(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("session not found: %s", opts.Session), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read session", err)
	}

	entries, err := j.ReadEntries(ctx, opts.Session)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to read entries", err)
	}

	result := TraceResult{Session: summarize(session), Timeline: []TraceEntry{}}
	for _, e := range entries {
		if opts.Action != "" && !strings.HasPrefix(e.Action, opts.Action) {
			continue
		}
		entry := TraceEntry{Seq: e.Seq, Action: e.Action, StateHash: e.StateHash}
		if opts.Verbose || formatter.JSON() {
			entry.State = e.State
		}
		result.Timeline = append(result.Timeline, entry)
	}
	if len(entries) > 0 {
		result.Final = entries[len(entries)-1].State
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputTraceText(cmd, result)
}

func summarize(s journal.Session) SessionSummary {
	return SessionSummary{ID: s.ID, App: s.App, CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339)}
}

func outputSessions(cmd *cobra.Command, formatter *OutputFormatter, sessions []SessionSummary) error {
	if formatter.JSON() {
		return formatter.Success(sessions)
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %-8s  %s\n", s.ID, s.App, s.CreatedAt)
	}
	return nil
}

func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session %s (%s, %s)\n", result.Session.ID, result.Session.App, result.Session.CreatedAt)
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  no entries")
		return nil
	}

	for _, e := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s  %s\n", e.Seq, e.Action, shortHash(e.StateHash))
		if len(e.State) > 0 {
			fmt.Fprintf(w, "      %s\n", e.State)
		}
	}
	if len(result.Final) > 0 {
		fmt.Fprintf(w, "Final state: %s\n", result.Final)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
