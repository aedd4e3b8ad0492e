package effect

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unidir/internal/testutil"
)

// subject is a hand-driven effect source for cancellation tests.
type subject[A any] struct {
	mu    sync.Mutex
	sinks []func(A)
	done  []func()
}

func (s *subject[A]) effect() Effect[A] {
	return New(func(send func(A), complete func()) Disposable {
		s.mu.Lock()
		s.sinks = append(s.sinks, send)
		s.done = append(s.done, complete)
		s.mu.Unlock()
		return nil
	})
}

func (s *subject[A]) emit(a A) {
	s.mu.Lock()
	sinks := append([]func(A){}, s.sinks...)
	s.mu.Unlock()
	for _, send := range sinks {
		send(a)
	}
}

func (s *subject[A]) finish() {
	s.mu.Lock()
	done := append([]func(){}, s.done...)
	s.mu.Unlock()
	for _, complete := range done {
		complete()
	}
}

func TestCancellable_CancelStopsDeliveryAndCompletesOnce(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	rec := newRecorder[int]()

	src.effect().CancellableIn(reg, "id", false).Subscribe(rec.send, rec.complete)
	src.emit(1)
	src.emit(2)
	require.Equal(t, 1, reg.Count("id"))

	reg.Cancel("id")
	src.emit(3)
	src.finish()
	reg.Cancel("id")

	values, completed := rec.snapshot()
	assert.Equal(t, []int{1, 2}, values)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reg.Len())
}

func TestCancellable_CancelWhileSubscribingDropsLaterActions(t *testing.T) {
	reg := NewRegistry()
	rec := newRecorder[int]()

	e := New(func(send func(int), complete func()) Disposable {
		reg.Cancel("tok")
		send(1)
		send(2)
		return nil
	})
	e.CancellableIn(reg, "tok", false).Subscribe(rec.send, rec.complete)

	values, completed := rec.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reg.Len())
}

func TestCancellable_NaturalCompletionRemovesHandle(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	rec := newRecorder[int]()

	src.effect().CancellableIn(reg, "id", false).Subscribe(rec.send, rec.complete)
	require.Equal(t, 1, reg.Len())

	src.emit(1)
	src.finish()

	values, completed := rec.snapshot()
	assert.Equal(t, []int{1}, values)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reg.Len(), "no empty token entry may remain")
}

func TestCancellable_SynchronousEffectLeavesNoResidue(t *testing.T) {
	reg := NewRegistry()
	rec := newRecorder[int]()

	Just(1, 2).CancellableIn(reg, "sync", false).Subscribe(rec.send, rec.complete)

	values, completed := rec.snapshot()
	assert.Equal(t, []int{1, 2}, values)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reg.Len())
}

func TestCancellable_SubscriberDisposeRemovesHandleWithoutCompletion(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	rec := newRecorder[int]()

	sub := src.effect().CancellableIn(reg, "id", false).Subscribe(rec.send, rec.complete)
	sub.Dispose()
	src.emit(1)

	values, completed := rec.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, 0, completed)
	assert.Equal(t, 0, reg.Len())
}

func TestCancellable_SameTokenTwiceRegistersTwoHandles(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	first := newRecorder[int]()
	second := newRecorder[int]()

	e := src.effect().CancellableIn(reg, "shared", false)
	e.Subscribe(first.send, first.complete)
	e.Subscribe(second.send, second.complete)
	require.Equal(t, 2, reg.Count("shared"))

	reg.Cancel("shared")
	src.emit(1)

	v1, c1 := first.snapshot()
	v2, c2 := second.snapshot()
	assert.Empty(t, v1)
	assert.Empty(t, v2)
	assert.Equal(t, 1, c1)
	assert.Equal(t, 1, c2)
	assert.Equal(t, 0, reg.Len())
}

func TestCancellable_CancelInFlightDisposesPriorHandle(t *testing.T) {
	reg := NewRegistry()
	firstSrc := &subject[string]{}
	secondSrc := &subject[string]{}
	first := newRecorder[string]()
	second := newRecorder[string]()

	firstSrc.effect().CancellableIn(reg, "search", true).Subscribe(first.send, first.complete)
	firstSrc.emit("a1")

	secondSrc.effect().CancellableIn(reg, "search", true).Subscribe(second.send, second.complete)
	firstSrc.emit("a2")
	secondSrc.emit("b1")

	v1, c1 := first.snapshot()
	v2, c2 := second.snapshot()
	assert.Equal(t, []string{"a1"}, v1, "values delivered before disposal remain")
	assert.Equal(t, 1, c1)
	assert.Equal(t, []string{"b1"}, v2)
	assert.Equal(t, 0, c2)
	assert.Equal(t, 1, reg.Count("search"))
}

func TestCancellable_CancelInFlightWithDeferredEffects(t *testing.T) {
	reg := NewRegistry()
	sched := testutil.NewScheduler()
	rec := newRecorder[int]()

	for i := 1; i <= 3; i++ {
		Deferred(Just(i), time.Second, sched).
			CancellableIn(reg, "debounce", true).
			Subscribe(rec.send, func() {})
		sched.Advance(500 * time.Millisecond)
	}
	sched.Run()

	values, _ := rec.snapshot()
	assert.Equal(t, []int{3}, values)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, sched.Pending())
}

func TestCancel_UnknownTokenIsNoop(t *testing.T) {
	reg := NewRegistry()
	assert.NotPanics(t, func() {
		reg.Cancel("nope")
		reg.Cancel("nope")
	})
	assert.Equal(t, 0, reg.Len())
}

func TestCancelIn_IsAnEffect(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	rec := newRecorder[int]()
	src.effect().CancellableIn(reg, 42, false).Subscribe(rec.send, rec.complete)

	cancel := CancelIn[int](reg, 42)
	assert.Equal(t, 1, reg.Len(), "cancel effect is lazy")

	done := newRecorder[int]()
	cancel.Subscribe(done.send, done.complete)

	_, completed := rec.snapshot()
	assert.Equal(t, 1, completed)
	_, cancelDone := done.snapshot()
	assert.Equal(t, 1, cancelDone)
	assert.Equal(t, 0, reg.Len())
}

func TestCancelMany(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	for _, token := range []string{"a", "b", "c"} {
		src.effect().CancellableIn(reg, token, false).Subscribe(nil, nil)
	}
	require.Equal(t, 3, reg.Len())

	CancelMany[int](reg, "a", "c").Subscribe(nil, nil)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []any{"b"}, reg.Tokens())
}

func TestCancellable_DefaultRegistry(t *testing.T) {
	type token struct{ name string }
	id := token{name: t.Name()}
	src := &subject[int]{}
	rec := newRecorder[int]()

	src.effect().Cancellable(id, false).Subscribe(rec.send, rec.complete)
	require.Equal(t, 1, DefaultRegistry().Count(id))

	Cancel[int](id).Subscribe(nil, nil)
	src.emit(1)

	values, completed := rec.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, DefaultRegistry().Count(id))
}

func TestCancellable_CompletionCallbackMayCancelAgain(t *testing.T) {
	reg := NewRegistry()
	src := &subject[int]{}
	completed := 0

	src.effect().CancellableIn(reg, "id", false).Subscribe(nil, func() {
		completed++
		reg.Cancel("id")
	})
	reg.Cancel("id")

	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ConcurrentChurnLeavesNoEntries(t *testing.T) {
	reg := NewRegistry()
	const producers = 16
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				token := fmt.Sprintf("token-%d", (p+i)%8)
				var e Effect[int]
				switch i % 3 {
				case 0:
					e = Just(i)
				case 1:
					e = Run(func(ctx context.Context, send func(int)) { send(i) })
				default:
					e = Run(func(ctx context.Context, send func(int)) { <-ctx.Done() })
				}
				e.CancellableIn(reg, token, i%2 == 0).Subscribe(nil, nil)
				if i%5 == 0 {
					reg.Cancel(token)
				}
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		reg.Cancel(fmt.Sprintf("token-%d", i))
	}

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}
