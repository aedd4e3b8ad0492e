package effect

import (
	"sync"
	"sync/atomic"
)

// Disposable tears down a running effect.
//
// Dispose is idempotent. Once Dispose has returned, the effect delivers no
// further actions to the subscriber that received this Disposable.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a plain function to Disposable.
type DisposeFunc func()

// Dispose calls f.
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Disposed is a Disposable that does nothing.
var Disposed Disposable = DisposeFunc(nil)

// Effect is a lazy producer of zero or more actions.
//
// Nothing runs until Subscribe is called, and every call to Subscribe
// starts the work again. An effect terminates either by completing or by
// being disposed. Values may be delivered synchronously (before Subscribe
// returns) or later from any goroutine.
//
// The zero value is the empty effect: it completes immediately without
// delivering anything.
type Effect[A any] struct {
	subscribe func(send func(A), complete func()) Disposable
}

// New creates an effect from a subscribe function.
//
// The function receives send and complete callbacks. Implementations may
// call them from any goroutine. Calls made after complete or after the
// returned Disposable has been disposed are dropped.
func New[A any](subscribe func(send func(A), complete func()) Disposable) Effect[A] {
	return Effect[A]{subscribe: subscribe}
}

// IsNone reports whether e is the empty effect.
func (e Effect[A]) IsNone() bool {
	return e.subscribe == nil
}

// Subscribe starts the effect.
//
// send is called for every delivered action, complete at most once when the
// effect finishes on its own. Disposing the returned Disposable stops
// delivery without calling complete.
func (e Effect[A]) Subscribe(send func(A), complete func()) Disposable {
	if send == nil {
		send = func(A) {}
	}
	if complete == nil {
		complete = func() {}
	}
	if e.subscribe == nil {
		complete()
		return Disposed
	}

	g := &guard[A]{send: send, complete: complete}
	inner := e.subscribe(g.deliver, g.finish)
	g.attach(inner)
	return g
}

// guard enforces the delivery contract of Subscribe for one subscriber.
type guard[A any] struct {
	send     func(A)
	complete func()

	stopped atomic.Bool

	mu       sync.Mutex
	inner    Disposable
	disposed bool
}

func (g *guard[A]) deliver(a A) {
	if g.stopped.Load() {
		return
	}
	g.send(a)
}

func (g *guard[A]) finish() {
	if g.stopped.CompareAndSwap(false, true) {
		g.complete()
	}
}

func (g *guard[A]) attach(inner Disposable) {
	if inner == nil {
		return
	}
	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		inner.Dispose()
		return
	}
	g.inner = inner
	g.mu.Unlock()
}

func (g *guard[A]) Dispose() {
	g.stopped.Store(true)

	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		return
	}
	g.disposed = true
	inner := g.inner
	g.inner = nil
	g.mu.Unlock()

	if inner != nil {
		inner.Dispose()
	}
}

// Map transforms every action delivered by e.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	if e.IsNone() {
		return Effect[B]{}
	}
	return New(func(send func(B), complete func()) Disposable {
		return e.Subscribe(func(a A) { send(f(a)) }, complete)
	})
}
