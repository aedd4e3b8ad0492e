package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_StartsAtZero(t *testing.T) {
	s := NewScheduler()
	assert.Equal(t, time.Duration(0), s.Now())
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_AdvanceRunsDueWorkInOrder(t *testing.T) {
	s := NewScheduler()
	var order []string

	s.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	s.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	s.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	s.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 2*time.Second, s.Now())
	assert.Equal(t, 1, s.Pending())

	s.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_TiesRunInSchedulingOrder(t *testing.T) {
	s := NewScheduler()
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		s.AfterFunc(time.Second, func() { order = append(order, i) })
	}
	s.Advance(time.Second)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestScheduler_StopCancelsPendingWork(t *testing.T) {
	s := NewScheduler()
	ran := false

	stop := s.AfterFunc(time.Second, func() { ran = true })
	stop()
	s.Advance(time.Minute)

	assert.False(t, ran)
	assert.Equal(t, 0, s.Pending())

	// Stopping again is harmless.
	stop()
}

func TestScheduler_WorkCanScheduleMoreWork(t *testing.T) {
	s := NewScheduler()
	var at []time.Duration

	s.AfterFunc(time.Second, func() {
		at = append(at, s.Now())
		s.AfterFunc(time.Second, func() { at = append(at, s.Now()) })
	})

	s.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
	assert.Equal(t, 5*time.Second, s.Now())
}

func TestScheduler_RunDrainsEverything(t *testing.T) {
	s := NewScheduler()
	count := 0

	s.AfterFunc(time.Hour, func() { count++ })
	s.AfterFunc(time.Minute, func() { count++ })
	s.Run()

	assert.Equal(t, 2, count)
	assert.Equal(t, time.Hour, s.Now())
}

func TestScheduler_ThreadSafe(t *testing.T) {
	s := NewScheduler()
	const goroutines = 50

	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AfterFunc(time.Millisecond, func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines, s.Pending())
	s.Advance(time.Millisecond)
	assert.Equal(t, goroutines, count)
}

func TestFixedIDGenerator(t *testing.T) {
	gen := NewFixedIDGenerator("session-1", "session-2")
	assert.Equal(t, "session-1", gen.Generate())
	assert.Equal(t, "session-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestFixedIDGenerator_Default(t *testing.T) {
	gen := NewFixedIDGenerator()
	assert.Equal(t, "test-session-default", gen.Generate())
	assert.Equal(t, "test-session-default", gen.Generate())
}
