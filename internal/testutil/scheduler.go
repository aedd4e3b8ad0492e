package testutil

import (
	"sort"
	"sync"
	"time"
)

// Scheduler is a virtual-time scheduler for deterministic effect tests.
//
// Work scheduled with AfterFunc only runs when the test calls Advance or
// Run; it runs on the calling goroutine, in due-time order, with ties broken
// by scheduling order. Time never moves on its own.
//
// Thread-safety: all methods are safe for concurrent use. Scheduled work
// runs without the internal mutex held, so it may schedule more work.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int64
	pending []*scheduled
}

type scheduled struct {
	due       time.Duration
	seq       int64
	f         func()
	cancelled bool
}

// NewScheduler creates a scheduler at virtual time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AfterFunc schedules f to run once the virtual clock reaches now+d.
// Implements effect.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.seq++
	item := &scheduled{due: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, item)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		item.cancelled = true
	}
}

// Advance moves the clock forward by d, running every item that becomes due.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		item, ok := s.popDue(target)
		if !ok {
			break
		}
		item.f()
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
}

// Run advances the clock until no work is pending.
func (s *Scheduler) Run() {
	for {
		s.mu.Lock()
		s.compact()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		next := s.pending[0].due
		s.mu.Unlock()
		s.Advance(next - s.Now())
	}
}

// Now returns the current virtual time, measured from creation.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of scheduled, not-yet-run, not-cancelled items.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compact()
	return len(s.pending)
}

func (s *Scheduler) popDue(target time.Duration) (*scheduled, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.compact()
	if len(s.pending) == 0 || s.pending[0].due > target {
		return nil, false
	}
	item := s.pending[0]
	s.pending[0] = nil
	s.pending = s.pending[1:]
	if item.due > s.now {
		s.now = item.due
	}
	return item, true
}

// compact drops cancelled items and restores due-time order.
// Callers must hold s.mu.
func (s *Scheduler) compact() {
	live := s.pending[:0]
	for _, item := range s.pending {
		if !item.cancelled {
			live = append(live, item)
		}
	}
	for i := len(live); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = live
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due != s.pending[j].due {
			return s.pending[i].due < s.pending[j].due
		}
		return s.pending[i].seq < s.pending[j].seq
	})
}
