package store

import (
	"reflect"
	"sync"

	"github.com/roach88/unidir/internal/effect"
)

// Publisher is a lazy, restartable stream of projected state values.
//
// Nothing is observed until Sink is called. Every Sink starts a fresh
// subscription that first receives the current projection and afterwards
// only projections that differ from the previously delivered one.
type Publisher[T any] struct {
	attach func(receive func(T)) (cancel func())
}

// Subscribe returns a publisher of project(state) values, deduplicated with
// equal. A nil equal means reflect.DeepEqual.
func Subscribe[S, A, T any](st *Store[S, A], project func(S) T, equal func(a, b T) bool) *Publisher[T] {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}

	return &Publisher[T]{
		attach: func(receive func(T)) func() {
			var (
				mu   sync.Mutex
				last T
				have bool
			)
			return st.observe(func(s S) {
				v := project(s)

				mu.Lock()
				if have && equal(last, v) {
					mu.Unlock()
					return
				}
				last, have = v, true
				mu.Unlock()

				receive(v)
			})
		},
	}
}

// Sink starts a subscription that calls receive with each distinct value.
// Disposing the returned Disposable stops delivery.
func (p *Publisher[T]) Sink(receive func(T)) effect.Disposable {
	return effect.DisposeFunc(p.attach(receive))
}

// Values collects every value delivered until the returned stop function is
// called. It is mainly useful in tests and in the CLI, which print the
// history of a projection.
func (p *Publisher[T]) Values() (values func() []T, stop func()) {
	var (
		mu  sync.Mutex
		out []T
	)
	cancel := p.attach(func(v T) {
		mu.Lock()
		out = append(out, v)
		mu.Unlock()
	})
	return func() []T {
		mu.Lock()
		defer mu.Unlock()
		cp := make([]T, len(out))
		copy(cp, out)
		return cp
	}, cancel
}
