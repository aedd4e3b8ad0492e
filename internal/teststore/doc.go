// Package teststore provides a scripted assertion runner for reducers.
//
// A TestStore owns a state value and runs a reducer against it, but unlike
// store.Store it never feeds effect output back automatically. Actions
// produced by effects are collected in a received queue and must be
// acknowledged, in order, with Receive. Every step states how the state is
// expected to change; the runner compares the expectation with the reducer's
// actual result and reports a readable diff on mismatch.
//
// Typical use:
//
//	ts := teststore.New(t, Counter{}, counterReducer, env)
//	ts.Send(Increment{}, func(s *Counter) { s.Count = 1 })
//	ts.Send(StartTimer{}, nil)
//	sched.Advance(time.Second)
//	ts.Receive(Tick{}, func(s *Counter) { s.Count = 2 })
//	ts.Finish()
//
// Finish fails if received actions were left unhandled or effects are still
// in flight.
package teststore
