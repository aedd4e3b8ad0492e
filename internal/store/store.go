package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/observability"
	"github.com/roach88/unidir/internal/reducer"
)

// Store owns a state value and advances it by reducing actions.
//
// Send appends an action to a FIFO queue and drains it: each action is
// reduced, the new state is published to observers, and the returned effect
// is subscribed. Actions an effect emits while it is being subscribed go to
// the tail of the same queue, so follow-ups are processed breadth-first.
// Actions an effect emits later, from any goroutine, re-enter through the
// same queue.
//
// Thread-safety model:
//   - Only one goroutine drains a store at a time. A Send that arrives while
//     another goroutine is draining appends its action and returns; the
//     active drainer reduces it. State is never mutated concurrently.
//   - The outermost Send on the draining goroutine returns once the queue
//     is empty.
//   - State, Warnings, InFlight and Close are safe from any goroutine.
//
// Calling Send from inside a reducer is misuse. It is reported as a
// WarningReentrantSend and the action is queued behind the current one.
// The store cannot tell which goroutine is calling, so a Send from another
// goroutine that lands while a reducer is running gets the same warning.
// The action is still reduced; only the diagnostic is imprecise. Senders on
// other goroutines that must not trip it should deliver through an effect.
type Store[S, A any] struct {
	name     string
	reduce   func(*S, A) effect.Effect[A]
	observer observability.Observer
	onWarn   func(Warning)
	clock    *Clock
	now      func() time.Time
	ctx      context.Context

	mu          sync.Mutex
	state       S
	version     uint64
	queue       *actionQueue[A]
	draining    bool
	dispatching bool
	current     A
	closed      bool
	warnings    []Warning

	nextObserverID uint64
	observers      map[uint64]*stateObserver[S]
	observerOrder  []uint64

	nextEffectID uint64
	effects      map[uint64]effect.Disposable

	idleWaiters []chan struct{}
	detach      func()
}

// Option configures a Store.
type Option func(*options)

type options struct {
	name     string
	observer observability.Observer
	onWarn   func(Warning)
	clock    *Clock
	now      func() time.Time
	ctx      context.Context
}

// WithName sets the name used as the event source and in warnings.
//
// Default: "store" for root stores, "<parent>/scope" for scoped stores.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver sets the observer that receives store events.
//
// Default: NoOpObserver for root stores; scoped stores inherit the parent's.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger is shorthand for WithObserver(observability.NewSlogObserver(logger)).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.observer = observability.NewSlogObserver(logger)
	}
}

// WithWarningHandler installs a callback invoked synchronously for every
// Warning. The handler may panic to make misuse fatal.
func WithWarningHandler(h func(Warning)) Option {
	return func(o *options) {
		o.onWarn = h
	}
}

// WithClock sets the logical clock used to stamp reduced actions.
// Use NewClockAt to continue numbering from a previous session.
func WithClock(c *Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithNow sets the wall-clock source used for event timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithContext sets the context passed to the observer.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// New creates a root store.
//
// The reducer and environment are fixed for the store's lifetime.
func New[S, A, E any](initial S, r reducer.Reducer[S, A, E], env E, opts ...Option) *Store[S, A] {
	return newStore(initial, func(s *S, a A) effect.Effect[A] {
		return r.Run(s, a, env)
	}, applyOptions(options{name: "store"}, opts))
}

func applyOptions(o options, opts []Option) options {
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = observability.NoOpObserver{}
	}
	if o.clock == nil {
		o.clock = NewClock()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

func newStore[S, A any](initial S, reduce func(*S, A) effect.Effect[A], o options) *Store[S, A] {
	return &Store[S, A]{
		name:      o.name,
		reduce:    reduce,
		observer:  o.observer,
		onWarn:    o.onWarn,
		clock:     o.clock,
		now:       o.now,
		ctx:       o.ctx,
		state:     initial,
		queue:     newActionQueue[A](),
		observers: make(map[uint64]*stateObserver[S]),
		effects:   make(map[uint64]effect.Disposable),
	}
}

// Name returns the store's name.
func (st *Store[S, A]) Name() string {
	return st.name
}

// State returns the current state.
//
// The value is a shallow copy. Maps, slices and pointers inside it are
// shared with the store and must not be mutated by the caller.
func (st *Store[S, A]) State() S {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Send reduces action and every action it synchronously leads to.
func (st *Store[S, A]) Send(action A) {
	st.mu.Lock()
	if st.closed {
		w := st.warningLocked(WarningSendAfterClose, action)
		st.mu.Unlock()
		st.report(w)
		return
	}

	st.queue.push(action)

	if st.dispatching {
		w := st.warningLocked(WarningReentrantSend, action)
		st.mu.Unlock()
		st.report(w)
		return
	}
	if st.draining {
		st.mu.Unlock()
		return
	}
	st.draining = true
	st.mu.Unlock()

	st.drain()
}

// enqueue is the send callback given to effects. It behaves like Send
// without misuse detection: effects legitimately deliver while the store is
// draining.
func (st *Store[S, A]) enqueue(action A) {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	st.queue.push(action)
	if st.draining {
		st.mu.Unlock()
		return
	}
	st.draining = true
	st.mu.Unlock()

	st.drain()
}

// drain runs the dispatch loop until the queue is empty.
// The caller must have set st.draining.
func (st *Store[S, A]) drain() {
	defer func() {
		if r := recover(); r != nil {
			st.mu.Lock()
			st.draining = false
			st.dispatching = false
			st.queue.clear()
			st.signalIdleLocked()
			st.mu.Unlock()
			panic(r)
		}
	}()

	for {
		st.mu.Lock()
		action, ok := st.queue.pop()
		if !ok || st.closed {
			st.queue.clear()
			st.draining = false
			st.signalIdleLocked()
			st.mu.Unlock()
			return
		}
		working := st.state
		st.dispatching = true
		st.current = action
		st.mu.Unlock()

		eff := st.reduce(&working, action)

		st.mu.Lock()
		st.dispatching = false
		var zero A
		st.current = zero
		st.state = working
		st.version++
		version := st.version
		subs := st.observersLocked()
		st.mu.Unlock()

		seq := st.clock.Next()
		st.emit(EventActionReduced, observability.LevelVerbose, map[string]any{
			"seq":    seq,
			"action": fmt.Sprint(action),
			"state":  working,
		})

		publish(subs, version, working)
		st.subscribeEffect(eff, action)
	}
}

// subscribeEffect starts eff and tracks it until it completes or the store
// is closed.
func (st *Store[S, A]) subscribeEffect(eff effect.Effect[A], cause A) {
	if eff.IsNone() {
		return
	}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	st.nextEffectID++
	id := st.nextEffectID
	st.effects[id] = nil
	st.mu.Unlock()

	st.emit(EventEffectStarted, observability.LevelVerbose, map[string]any{
		"effect_id": id,
		"cause":     fmt.Sprint(cause),
	})

	sub := eff.Subscribe(st.enqueue, func() { st.effectDone(id) })

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		sub.Dispose()
		return
	}
	if _, live := st.effects[id]; live {
		st.effects[id] = sub
	}
	st.mu.Unlock()
}

func (st *Store[S, A]) effectDone(id uint64) {
	st.mu.Lock()
	if _, live := st.effects[id]; !live {
		st.mu.Unlock()
		return
	}
	delete(st.effects, id)
	st.signalIdleLocked()
	st.mu.Unlock()

	st.emit(EventEffectCompleted, observability.LevelVerbose, map[string]any{
		"effect_id": id,
	})
}

// InFlight returns the number of effects that have been subscribed and have
// neither completed nor been disposed.
func (st *Store[S, A]) InFlight() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.effects)
}

// Warnings returns the misuse diagnostics recorded so far.
func (st *Store[S, A]) Warnings() []Warning {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Warning, len(st.warnings))
	copy(out, st.warnings)
	return out
}

// WaitIdle blocks until the queue is empty, no goroutine is draining, and no
// effect is in flight, or until ctx is done.
func (st *Store[S, A]) WaitIdle(ctx context.Context) error {
	st.mu.Lock()
	if st.idleLocked() {
		st.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	st.idleWaiters = append(st.idleWaiters, ch)
	st.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disposes every in-flight effect and stops the store.
//
// Actions sent after Close are dropped with a WarningSendAfterClose. A
// scoped store also stops following its parent. Close is idempotent.
func (st *Store[S, A]) Close() {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	st.closed = true
	st.queue.clear()

	ids := make([]uint64, 0, len(st.effects))
	subs := make([]effect.Disposable, 0, len(st.effects))
	for id, sub := range st.effects {
		ids = append(ids, id)
		subs = append(subs, sub)
	}
	st.effects = make(map[uint64]effect.Disposable)
	st.observers = make(map[uint64]*stateObserver[S])
	st.observerOrder = nil
	detach := st.detach
	st.detach = nil
	st.signalIdleLocked()
	st.mu.Unlock()

	if detach != nil {
		detach()
	}
	for i, sub := range subs {
		if sub != nil {
			sub.Dispose()
		}
		st.emit(EventEffectCancelled, observability.LevelVerbose, map[string]any{
			"effect_id": ids[i],
		})
	}
	st.emit(EventClosed, observability.LevelInfo, nil)
}

func (st *Store[S, A]) idleLocked() bool {
	return st.closed || (!st.draining && st.queue.len() == 0 && len(st.effects) == 0)
}

func (st *Store[S, A]) signalIdleLocked() {
	if len(st.idleWaiters) == 0 || !st.idleLocked() {
		return
	}
	for _, ch := range st.idleWaiters {
		close(ch)
	}
	st.idleWaiters = nil
}

func (st *Store[S, A]) warningLocked(kind WarningKind, action A) Warning {
	w := Warning{
		Kind:   kind,
		Store:  st.name,
		Action: fmt.Sprint(action),
		Seq:    st.clock.Current(),
	}
	if st.dispatching {
		w.During = fmt.Sprint(st.current)
	}
	st.warnings = append(st.warnings, w)
	return w
}

func (st *Store[S, A]) report(w Warning) {
	st.emit(EventWarning, observability.LevelWarning, map[string]any{
		"kind":    string(w.Kind),
		"action":  w.Action,
		"during":  w.During,
		"message": w.String(),
	})
	if st.onWarn != nil {
		st.onWarn(w)
	}
}

func (st *Store[S, A]) emit(t observability.EventType, level observability.Level, data map[string]any) {
	st.observer.OnEvent(st.ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: st.now(),
		Source:    st.name,
		Data:      data,
	})
}
