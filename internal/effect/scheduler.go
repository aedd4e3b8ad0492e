package effect

import "time"

// Scheduler runs work after a delay.
//
// AfterFunc returns a function that cancels the pending work. Calling it
// after the work ran is a no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func())
}

// RealScheduler schedules work on the wall clock via time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}
