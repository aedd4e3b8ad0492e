package harness

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/unidir/internal/demo"
	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/observability"
	"github.com/roach88/unidir/internal/snapshot"
	"github.com/roach88/unidir/internal/store"
	"github.com/roach88/unidir/internal/teststore"
	"github.com/roach88/unidir/internal/testutil"
)

// DefaultTimeout bounds how long a receive step waits when the scenario
// does not set a timeout.
const DefaultTimeout = 200 * time.Millisecond

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger handed to the application environment.
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithObserver sets an observer that receives every step event in addition
// to the harness's own trace recorder.
func WithObserver(obs observability.Observer) Option {
	return func(h *Harness) {
		h.observer = obs
	}
}

// Harness executes one scenario with a virtual scheduler, an isolated
// cancellation registry and a logical clock.
type Harness struct {
	scenario *Scenario
	sched    *testutil.Scheduler
	clock    *store.Clock
	logger   *slog.Logger
	observer observability.Observer
	result   *Result

	// current is the step being executed; the trace recorder reads it to
	// label events.
	current Step
	label   string
}

// failures adapts teststore failures into result errors.
type failures struct {
	h *Harness
}

func (failures) Helper() {}

func (f failures) Errorf(format string, args ...any) {
	f.h.result.AddError(f.h.label + ": " + fmt.Sprintf(format, args...))
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the app's initial state and a deterministic environment
// 2. Execute steps through a TestStore
// 3. Check that nothing was left unhandled
// 4. Evaluate assertions against the trace and final state
//
// A returned error means the scenario could not be run at all; failed steps
// and assertions are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	app, ok := demo.Lookup(scenario.App)
	if !ok {
		return nil, fmt.Errorf("unknown app %q", scenario.App)
	}

	timeout := DefaultTimeout
	if scenario.Timeout != "" {
		d, err := time.ParseDuration(scenario.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		timeout = d
	}

	h := &Harness{
		scenario: scenario,
		sched:    testutil.NewScheduler(),
		clock:    store.NewClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: observability.NoOpObserver{},
		result:   NewResult(),
	}
	for _, opt := range opts {
		opt(h)
	}

	env := demo.Environment{
		Scheduler: h.sched,
		Registry:  effect.NewRegistry(),
		Delay:     time.Second,
		Interval:  time.Second,
		Facts:     demo.ParityFact,
		Logger:    h.logger,
	}

	ts := teststore.New[demo.State, demo.Action, demo.Environment](
		failures{h},
		app.Initial(),
		app.Reducer,
		env,
		teststore.WithTimeout(timeout),
		teststore.WithName(scenario.Name),
		teststore.WithObserver(observability.NewMultiObserver(
			observability.ObserverFunc(h.record),
			h.observer,
		)),
	)

	completed := true
	for i, step := range scenario.Steps {
		before := len(h.result.Errors)
		h.label = fmt.Sprintf("steps[%d]", i)
		if err := h.executeStep(ts, step); err != nil {
			h.result.AddError(fmt.Sprintf("%s: %v", h.label, err))
		}
		// Later steps would only report consequences of the first failure.
		if len(h.result.Errors) > before {
			completed = false
			break
		}
	}
	if completed {
		h.label = "finish"
		ts.Finish()
	} else {
		ts.SkipReceived()
		ts.SkipInFlight()
	}

	state, err := snapshot.Marshal(ts.State())
	if err != nil {
		return nil, fmt.Errorf("encode final state: %w", err)
	}
	h.result.State = state

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// executeStep runs one step. Reducer panics (precondition violations) are
// returned as errors and end the scenario.
func (h *Harness) executeStep(ts *teststore.TestStore[demo.State, demo.Action, demo.Environment], step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	h.current = step

	switch step.Kind() {
	case StepAdvance:
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		ts.Do(func() { h.sched.Advance(d) })
		return nil

	case StepSend:
		action, err := demo.Decode(step.Send, step.Args)
		if err != nil {
			return err
		}
		ts.Send(action, h.expectation(step))
		return nil

	default:
		action, err := demo.Decode(step.Receive, step.Args)
		if err != nil {
			return err
		}
		ts.Receive(action, h.expectation(step))
		return nil
	}
}

// expectation turns a step's merge patch into a TestStore update.
func (h *Harness) expectation(step Step) func(*demo.State) {
	if step.Expect == nil {
		return nil
	}
	patch := step.Expect
	return func(s *demo.State) {
		patched, err := snapshot.Patch(*s, patch)
		if err != nil {
			h.result.AddError(fmt.Sprintf("%s: expect: %v", h.label, err))
			return
		}
		*s = patched
	}
}

// record appends a trace event for every step the TestStore reduced.
func (h *Harness) record(_ context.Context, event observability.Event) {
	if event.Type != teststore.EventStep {
		return
	}

	state, err := snapshot.Marshal(event.Data["state"])
	if err != nil {
		h.result.AddError(fmt.Sprintf("trace: %v", err))
		return
	}

	kind, _ := event.Data["kind"].(string)
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Seq:    h.clock.Next(),
		Kind:   kind,
		Name:   h.current.Send + h.current.Receive,
		Action: fmt.Sprint(event.Data["action"]),
		Args:   h.current.Args,
		State:  state,
	})
}

// ScenarioRun is the outcome of one file in RunDir.
type ScenarioRun struct {
	Path     string
	Scenario *Scenario // nil when the file failed to load
	Result   *Result   // nil when the scenario could not be run
	Err      error
}

// Passed reports whether the scenario loaded, ran and passed.
func (r ScenarioRun) Passed() bool {
	return r.Err == nil && r.Result != nil && r.Result.Pass
}

// FindScenarios returns the *.yaml and *.yml files under dir, walking
// subdirectories in lexical order and skipping golden/ directories. A
// non-empty pattern keeps only files whose name without extension matches
// it (filepath.Match syntax).
func FindScenarios(dir, pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if pattern != "" {
			matched, _ := filepath.Match(pattern, strings.TrimSuffix(d.Name(), ext))
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	return files, nil
}

// RunDir runs every scenario FindScenarios returns for dir and pattern.
// Load and run errors are reported per file; the returned error is reserved
// for an unreadable dir or a malformed pattern.
func RunDir(dir, pattern string, opts ...Option) ([]ScenarioRun, error) {
	paths, err := FindScenarios(dir, pattern)
	if err != nil {
		return nil, err
	}

	runs := make([]ScenarioRun, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			runs = append(runs, ScenarioRun{Path: path, Err: err})
			continue
		}

		result, err := Run(scenario, opts...)
		runs = append(runs, ScenarioRun{Path: path, Scenario: scenario, Result: result, Err: err})
	}
	return runs, nil
}
