package effect

import "sync/atomic"

// Cancellable registers e under token in the default registry.
// See CancellableIn.
func (e Effect[A]) Cancellable(token any, cancelInFlight bool) Effect[A] {
	return e.CancellableIn(defaultRegistry, token, cancelInFlight)
}

// CancellableIn makes e cancellable through r by token.
//
// Each subscription registers its own handle. When cancelInFlight is set,
// handles already registered under token are disposed before e is
// subscribed, so nothing from an earlier run is delivered after the new run
// has registered.
//
// Cancelling the token disposes the subscription and completes the outward
// stream exactly once. No action is delivered after the cancel, even one
// sent while e is still being subscribed. The handle is removed when the effect completes, is
// disposed by its subscriber, or is cancelled, whichever happens first.
func (e Effect[A]) CancellableIn(r *Registry, token any, cancelInFlight bool) Effect[A] {
	return New(func(send func(A), complete func()) Disposable {
		id, h, prior := r.register(token, cancelInFlight)
		for _, p := range prior {
			p.cancel()
		}

		var finished atomic.Bool
		finish := func() {
			if finished.CompareAndSwap(false, true) {
				r.remove(token, id)
				complete()
			}
		}

		sub := e.Subscribe(func(a A) {
			if !h.stopped.Load() {
				send(a)
			}
		}, finish)
		teardown := func() {
			sub.Dispose()
			finish()
		}
		if !h.attach(teardown) {
			teardown()
		}
		return DisposeFunc(teardown)
	})
}

// Cancel returns an effect that cancels token in the default registry and
// completes without delivering any action.
func Cancel[A any](token any) Effect[A] {
	return CancelIn[A](defaultRegistry, token)
}

// CancelIn returns an effect that cancels token in r.
func CancelIn[A any](r *Registry, token any) Effect[A] {
	return FireAndForget[A](func() { r.Cancel(token) })
}

// CancelMany returns an effect that cancels each token in r, in order.
func CancelMany[A any](r *Registry, tokens ...any) Effect[A] {
	return FireAndForget[A](func() {
		for _, t := range tokens {
			r.Cancel(t)
		}
	})
}
