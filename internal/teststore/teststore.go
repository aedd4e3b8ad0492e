package teststore

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/observability"
	"github.com/roach88/unidir/internal/reducer"
	"github.com/roach88/unidir/internal/snapshot"
)

// TB is the subset of testing.TB used to report failures.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// Event types emitted by a TestStore.
const (
	// EventStep is emitted after every Send and Receive step. Data carries
	// "kind" ("send" or "receive"), "action" and "state".
	EventStep observability.EventType = "teststore.step"
)

// DefaultTimeout bounds how long Receive and Finish wait for asynchronous
// effects.
const DefaultTimeout = time.Second

// Option configures a TestStore.
type Option func(*config)

type config struct {
	timeout  time.Duration
	observer observability.Observer
	name     string
}

// WithTimeout sets how long Receive and Finish wait for effects that
// deliver from other goroutines.
//
// Default: DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithObserver sets the observer that receives an EventStep for every step.
func WithObserver(obs observability.Observer) Option {
	return func(c *config) {
		c.observer = obs
	}
}

// WithName sets the event source name. Default: "teststore".
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// TestStore runs a reducer step by step and asserts every state change and
// every action produced by effects.
//
// Steps (Send, Receive, Environment, Finish) must be called from one
// goroutine. Effects may deliver from any goroutine.
type TestStore[S, A, E any] struct {
	tb      TB
	reducer reducer.Reducer[S, A, E]
	env     E
	state   S
	cfg     config

	mu       sync.Mutex
	received []A
	inFlight map[uint64]effect.Disposable
	nextID   uint64
	notify   chan struct{}
}

// New creates a TestStore with the given initial state, reducer and
// environment.
func New[S, A, E any](tb TB, initial S, r reducer.Reducer[S, A, E], env E, opts ...Option) *TestStore[S, A, E] {
	cfg := config{
		timeout:  DefaultTimeout,
		observer: observability.NoOpObserver{},
		name:     "teststore",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &TestStore[S, A, E]{
		tb:       tb,
		reducer:  r,
		env:      env,
		state:    initial,
		cfg:      cfg,
		inFlight: make(map[uint64]effect.Disposable),
		notify:   make(chan struct{}, 1),
	}
}

// State returns the current state.
func (ts *TestStore[S, A, E]) State() S {
	return ts.state
}

// Environment lets the caller modify the environment between steps, for
// example to swap a dependency for the next Send.
func (ts *TestStore[S, A, E]) Environment(update func(env *E)) {
	update(&ts.env)
}

// Do runs work between steps. It exists to keep scripted tests readable:
// advancing a virtual scheduler or closing a channel sits in the step list
// next to the assertions it enables.
func (ts *TestStore[S, A, E]) Do(work func()) {
	work()
}

// Send reduces action and asserts that the state changed exactly as update
// describes. A nil update asserts that the state did not change.
//
// Sending while received actions are still unhandled is a failure; they
// must be acknowledged with Receive (or dropped with SkipReceived) first.
func (ts *TestStore[S, A, E]) Send(action A, update func(state *S)) {
	ts.tb.Helper()

	if pending := ts.pendingReceived(); len(pending) > 0 {
		ts.tb.Errorf("must handle %d received action(s) before sending %v:\n%s",
			len(pending), action, renderActions(pending))
		return
	}

	ts.step("send", action, update)
}

// Receive asserts that the next action produced by an effect equals
// expected, reduces it and asserts the resulting state change.
//
// If no action has been received yet, Receive waits up to the configured
// timeout for an effect to deliver one.
func (ts *TestStore[S, A, E]) Receive(expected A, update func(state *S)) {
	ts.tb.Helper()

	if !ts.waitFor(func() bool { return len(ts.received) > 0 }) {
		ts.tb.Errorf("expected to receive %v, but no action was received within %s", expected, ts.cfg.timeout)
		return
	}

	ts.mu.Lock()
	actual := ts.received[0]
	ts.received = ts.received[1:]
	ts.mu.Unlock()

	if !reflect.DeepEqual(expected, actual) {
		ts.tb.Errorf("received unexpected action: expected %v, got %v\n%s",
			expected, actual, diff(expected, actual))
		return
	}

	ts.step("receive", actual, update)
}

// SkipReceived drops all received actions that have not been handled.
func (ts *TestStore[S, A, E]) SkipReceived() {
	ts.mu.Lock()
	ts.received = nil
	ts.mu.Unlock()
}

// SkipInFlight disposes every effect still in flight.
func (ts *TestStore[S, A, E]) SkipInFlight() {
	ts.mu.Lock()
	subs := make([]effect.Disposable, 0, len(ts.inFlight))
	for _, d := range ts.inFlight {
		if d != nil {
			subs = append(subs, d)
		}
	}
	clear(ts.inFlight)
	ts.mu.Unlock()

	for _, d := range subs {
		d.Dispose()
	}
}

// InFlight returns the number of effects that have neither completed nor
// been disposed.
func (ts *TestStore[S, A, E]) InFlight() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.inFlight)
}

// Finish asserts that the script handled everything: no received actions
// remain and no effects are in flight. It waits up to the configured
// timeout for asynchronous effects to complete. Effects still running after
// that are disposed so they cannot leak into other tests.
func (ts *TestStore[S, A, E]) Finish() {
	ts.tb.Helper()

	ts.waitFor(func() bool { return len(ts.inFlight) == 0 })

	if pending := ts.pendingReceived(); len(pending) > 0 {
		ts.tb.Errorf("%d received action(s) were not handled:\n%s", len(pending), renderActions(pending))
	}

	if n := ts.InFlight(); n > 0 {
		ts.tb.Errorf("%d effect(s) are still in flight; cancel them or wait for them to complete", n)
		ts.SkipInFlight()
	}
}

// step reduces action and asserts the resulting state.
func (ts *TestStore[S, A, E]) step(kind string, action A, update func(*S)) {
	ts.tb.Helper()

	expected, err := snapshot.Clone(ts.state)
	if err != nil {
		ts.tb.Errorf("%s %v: cannot copy state for comparison: %v", kind, action, err)
	} else if update != nil {
		update(&expected)
	}

	eff := ts.reducer.Run(&ts.state, action, ts.env)

	if err == nil {
		ts.compare(kind, action, expected)
	}

	ts.cfg.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStep,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    ts.cfg.name,
		Data: map[string]any{
			"kind":   kind,
			"action": fmt.Sprint(action),
			"state":  ts.state,
		},
	})

	ts.subscribe(eff)
}

// compare reports a mismatch between expected and the current state. The
// current state goes through the same copy as expected so that fields the
// copy normalizes (monotonic clock readings, time zones) compare equal.
func (ts *TestStore[S, A, E]) compare(kind string, action A, expected S) {
	ts.tb.Helper()

	actual, err := snapshot.Clone(ts.state)
	if err != nil {
		ts.tb.Errorf("%s %v: cannot copy state for comparison: %v", kind, action, err)
		return
	}
	if !reflect.DeepEqual(expected, actual) {
		ts.tb.Errorf("%s %v: state mismatch (-expected +actual):\n%s", kind, action, diff(expected, actual))
	}
}

// subscribe starts eff, collecting its actions into the received queue.
func (ts *TestStore[S, A, E]) subscribe(eff effect.Effect[A]) {
	if eff.IsNone() {
		return
	}

	ts.mu.Lock()
	ts.nextID++
	id := ts.nextID
	ts.inFlight[id] = nil
	ts.mu.Unlock()

	sub := eff.Subscribe(
		func(a A) {
			ts.mu.Lock()
			ts.received = append(ts.received, a)
			ts.mu.Unlock()
			ts.signal()
		},
		func() {
			ts.mu.Lock()
			delete(ts.inFlight, id)
			ts.mu.Unlock()
			ts.signal()
		},
	)

	ts.mu.Lock()
	if _, live := ts.inFlight[id]; live {
		ts.inFlight[id] = sub
	}
	ts.mu.Unlock()
}

func (ts *TestStore[S, A, E]) signal() {
	select {
	case ts.notify <- struct{}{}:
	default:
	}
}

// waitFor blocks until cond holds (evaluated under ts.mu) or the timeout
// elapses. It reports whether cond held.
func (ts *TestStore[S, A, E]) waitFor(cond func() bool) bool {
	timer := time.NewTimer(ts.cfg.timeout)
	defer timer.Stop()

	for {
		ts.mu.Lock()
		ok := cond()
		ts.mu.Unlock()
		if ok {
			return true
		}

		select {
		case <-ts.notify:
		case <-timer.C:
			ts.mu.Lock()
			defer ts.mu.Unlock()
			return cond()
		}
	}
}

func (ts *TestStore[S, A, E]) pendingReceived() []A {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]A, len(ts.received))
	copy(out, ts.received)
	return out
}

func renderActions[A any](actions []A) string {
	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "  %v\n", a)
	}
	return b.String()
}
