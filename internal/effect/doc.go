// Package effect implements lazy action producers and their cancellation.
//
// An Effect is what a reducer returns alongside its state mutation: zero or
// more follow-up actions, delivered synchronously or later from any
// goroutine. Effects do nothing until subscribed.
//
// CANCELLATION:
//
// Any effect can be made cancellable under a caller-chosen token:
//
//	fetch := effect.Future(load).CancellableIn(reg, searchID{}, true)
//	stop := effect.CancelIn[Action](reg, searchID{})
//
// The Registry is the only structure in this module built for concurrent
// mutation. Cancel may be called from any goroutine. Once a handle has been
// disposed it never delivers again, and its completion fires exactly once.
// Tokens with no live handles are removed from the table immediately.
//
// TIME:
//
// Delays go through a Scheduler so tests can drive virtual time
// (testutil.Scheduler) while production code uses RealScheduler.
package effect
