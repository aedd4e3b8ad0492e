package effect

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// None returns the empty effect.
func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Just returns an effect that synchronously delivers actions in order and
// then completes.
func Just[A any](actions ...A) Effect[A] {
	if len(actions) == 0 {
		return Effect[A]{}
	}
	return New(func(send func(A), complete func()) Disposable {
		for _, a := range actions {
			send(a)
		}
		complete()
		return Disposed
	})
}

// FireAndForget returns an effect that calls work synchronously for its side
// effects and completes without delivering any action.
func FireAndForget[A any](work func()) Effect[A] {
	return New(func(_ func(A), complete func()) Disposable {
		work()
		complete()
		return Disposed
	})
}

// Run starts work on a new goroutine. The effect completes when work
// returns. Disposing the effect cancels ctx; work should return promptly
// once ctx is done, and any action it sends afterwards is dropped.
func Run[A any](work func(ctx context.Context, send func(A))) Effect[A] {
	return New(func(send func(A), complete func()) Disposable {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer cancel()
			work(ctx, send)
			complete()
		}()
		return DisposeFunc(cancel)
	})
}

// Future runs work on a new goroutine and delivers its single result.
func Future[A any](work func(ctx context.Context) A) Effect[A] {
	return Run(func(ctx context.Context, send func(A)) {
		a := work(ctx)
		if ctx.Err() == nil {
			send(a)
		}
	})
}

// Deferred subscribes to e after d has elapsed on sched.
func Deferred[A any](e Effect[A], d time.Duration, sched Scheduler) Effect[A] {
	return New(func(send func(A), complete func()) Disposable {
		var (
			mu       sync.Mutex
			inner    Disposable
			disposed bool
		)
		stop := sched.AfterFunc(d, func() {
			mu.Lock()
			if disposed {
				mu.Unlock()
				return
			}
			mu.Unlock()

			sub := e.Subscribe(send, complete)

			mu.Lock()
			if disposed {
				mu.Unlock()
				sub.Dispose()
				return
			}
			inner = sub
			mu.Unlock()
		})
		return DisposeFunc(func() {
			mu.Lock()
			disposed = true
			sub := inner
			inner = nil
			mu.Unlock()

			stop()
			if sub != nil {
				sub.Dispose()
			}
		})
	})
}

// FromChannel delivers every value received on ch from a new goroutine and
// completes when ch is closed.
func FromChannel[A any](ch <-chan A) Effect[A] {
	return Run(func(ctx context.Context, send func(A)) {
		for {
			select {
			case <-ctx.Done():
				return
			case a, ok := <-ch:
				if !ok {
					return
				}
				send(a)
			}
		}
	})
}

// Merge subscribes to every effect in order and delivers all of their
// actions. Synchronous actions arrive in subscription order. The merged
// effect completes once every member has completed.
func Merge[A any](effects ...Effect[A]) Effect[A] {
	live := make([]Effect[A], 0, len(effects))
	for _, e := range effects {
		if !e.IsNone() {
			live = append(live, e)
		}
	}
	switch len(live) {
	case 0:
		return Effect[A]{}
	case 1:
		return live[0]
	}

	return New(func(send func(A), complete func()) Disposable {
		var remaining atomic.Int64
		remaining.Store(int64(len(live)))
		done := func() {
			if remaining.Add(-1) == 0 {
				complete()
			}
		}

		subs := make([]Disposable, 0, len(live))
		for _, e := range live {
			subs = append(subs, e.Subscribe(send, done))
		}
		return DisposeFunc(func() {
			for _, d := range subs {
				d.Dispose()
			}
		})
	})
}

// Concatenate runs effects one after another; each starts when the previous
// one completes.
func Concatenate[A any](effects ...Effect[A]) Effect[A] {
	live := make([]Effect[A], 0, len(effects))
	for _, e := range effects {
		if !e.IsNone() {
			live = append(live, e)
		}
	}
	switch len(live) {
	case 0:
		return Effect[A]{}
	case 1:
		return live[0]
	}

	return New(func(send func(A), complete func()) Disposable {
		c := &concat[A]{effects: live, send: send, complete: complete}
		c.next()
		return c
	})
}

type concat[A any] struct {
	effects  []Effect[A]
	send     func(A)
	complete func()

	mu       sync.Mutex
	idx      int
	current  Disposable
	disposed bool
}

func (c *concat[A]) next() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if c.idx == len(c.effects) {
		c.mu.Unlock()
		c.complete()
		return
	}
	e := c.effects[c.idx]
	c.idx++
	idx := c.idx
	c.mu.Unlock()

	sub := e.Subscribe(c.send, c.next)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		sub.Dispose()
		return
	}
	// A synchronous completion may already have moved on to a later effect.
	if c.idx == idx {
		c.current = sub
	}
	c.mu.Unlock()
}

func (c *concat[A]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	cur := c.current
	c.current = nil
	c.mu.Unlock()

	if cur != nil {
		cur.Dispose()
	}
}
