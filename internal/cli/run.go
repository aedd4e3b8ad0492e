package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/unidir/internal/demo"
	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/journal"
	"github.com/roach88/unidir/internal/observability"
	"github.com/roach88/unidir/internal/snapshot"
	"github.com/roach88/unidir/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Wait     time.Duration
	Observer string // registered observer name; empty means log to stderr
}

// RunResult is the output of the run command.
type RunResult struct {
	App      string            `json:"app"`
	Session  string            `json:"session,omitempty"`
	States   []json.RawMessage `json:"states"`
	Warnings []string          `json:"warnings,omitempty"`
	Pending  int               `json:"pending,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <app> <action>...",
		Short: "Send actions to a live store",
		Long: `Create a live store for a demo app and send it actions.

Actions are written as name[:key=value,...], for example increment,
add_todo:title=milk or start:name=tea,ticks=3. Every distinct state the
store publishes is printed in canonical JSON.

Effects run on real time. Use --wait to let delayed and asynchronous
effects finish before the store is closed. With --db, every reduced action
is journaled to SQLite and can be inspected with the trace command.

Examples:
  unidir run counter increment increment decrement
  unidir run counter increment request_fact --wait 1s
  unidir run todos add_todo:title=milk toggle:index=0 --db ./unidir.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")
	cmd.Flags().DurationVar(&opts.Wait, "wait", 0, "how long to wait for in-flight effects before closing")
	cmd.Flags().StringVar(&opts.Observer, "observer", "",
		fmt.Sprintf("registered observer for store events (one of %v)", observability.ObserverNames()))

	return cmd
}

func runApp(opts *RunOptions, appName string, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	app, ok := demo.Lookup(appName)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownApp,
			fmt.Sprintf("unknown app %q (available: %v)", appName, demo.Names()), nil)
	}

	// Parse every action before anything runs so a typo never leaves a
	// half-written journal session.
	actions := make([]demo.Action, 0, len(args))
	for _, arg := range args {
		action, err := demo.Parse(arg)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBadAction, "invalid action", err)
		}
		actions = append(actions, action)
	}

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var events observability.Observer = observability.NewSlogObserver(logger)
	if opts.Observer != "" {
		obs, err := observability.GetObserver(opts.Observer)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid observer", err)
		}
		events = obs
	}
	observers := []observability.Observer{events}
	result := RunResult{App: app.Name, States: []json.RawMessage{}}

	var recorder *journal.Recorder
	if opts.Database != "" {
		j, err := journal.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer j.Close()

		session, err := j.StartSession(ctx, app.Name)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "failed to start session", err)
		}
		logger.Debug("journal session started", "session", session.ID, "path", opts.Database)

		result.Session = session.ID
		recorder = journal.NewRecorder(j, session.ID, app.Name)
		observers = append(observers, recorder)
	}

	env := demo.LiveEnvironment(logger)
	env.Registry = effect.NewRegistry()

	st := store.New(app.Initial(), app.Reducer, env,
		store.WithName(app.Name),
		store.WithObserver(observability.NewMultiObserver(observers...)),
		store.WithContext(ctx),
	)

	values, stopValues := store.Subscribe(st, func(s demo.State) demo.State { return s }, nil).Values()

	for _, action := range actions {
		logger.Debug("sending action", "action", action)
		st.Send(action)
	}

	if opts.Wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
		if err := st.WaitIdle(waitCtx); err != nil {
			logger.Warn("effects still in flight", "count", st.InFlight(), "waited", opts.Wait)
		}
		cancel()
	}
	result.Pending = st.InFlight()

	st.Close()
	stopValues()

	for _, w := range st.Warnings() {
		result.Warnings = append(result.Warnings, w.String())
	}

	for _, s := range values() {
		data, err := snapshot.Marshal(s)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to encode state", err)
		}
		result.States = append(result.States, data)
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeJournal, "failed to journal actions", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputRunText(cmd, result)
}

func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	for i, s := range result.States {
		fmt.Fprintf(w, "[%d] %s\n", i, s)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if result.Pending > 0 {
		fmt.Fprintf(w, "%d effect(s) cancelled on close (use --wait to let them finish)\n", result.Pending)
	}
	if result.Session != "" {
		fmt.Fprintf(w, "session: %s\n", result.Session)
	}
	return nil
}
