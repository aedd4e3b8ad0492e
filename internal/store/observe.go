package store

import "sync"

// stateObserver receives every published state of one store.
//
// Publications carry the store's state version. An observer never goes
// back in time: a publication older than the last one it delivered is
// dropped. With a single driving goroutine that never happens; it only
// matters when an observer attaches while another goroutine is publishing.
type stateObserver[S any] struct {
	receive func(S)

	mu          sync.Mutex
	lastVersion uint64
	delivered   bool
	stopped     bool
}

func (o *stateObserver[S]) deliver(version uint64, s S) {
	o.mu.Lock()
	if o.stopped || (o.delivered && version < o.lastVersion) {
		o.mu.Unlock()
		return
	}
	o.delivered = true
	o.lastVersion = version
	o.mu.Unlock()

	o.receive(s)
}

func (o *stateObserver[S]) stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
}

// observe registers receive for every state the store publishes.
//
// receive is called immediately with the current state and then once per
// reducer run (and, for scoped stores, once per parent update), whether or
// not the state changed. It runs on the goroutine that drives the store and
// must not block. The returned function stops delivery.
func (st *Store[S, A]) observe(receive func(S)) (cancel func()) {
	o := &stateObserver[S]{receive: receive}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return func() {}
	}
	st.nextObserverID++
	id := st.nextObserverID
	st.observers[id] = o
	st.observerOrder = append(st.observerOrder, id)
	version, current := st.version, st.state
	st.mu.Unlock()

	o.deliver(version, current)

	return func() {
		o.stop()
		st.mu.Lock()
		defer st.mu.Unlock()
		if _, ok := st.observers[id]; !ok {
			return
		}
		delete(st.observers, id)
		for i, oid := range st.observerOrder {
			if oid == id {
				st.observerOrder = append(st.observerOrder[:i:i], st.observerOrder[i+1:]...)
				break
			}
		}
	}
}

// observersLocked returns the live observers in registration order.
// Callers must hold st.mu.
func (st *Store[S, A]) observersLocked() []*stateObserver[S] {
	if len(st.observerOrder) == 0 {
		return nil
	}
	out := make([]*stateObserver[S], 0, len(st.observerOrder))
	for _, id := range st.observerOrder {
		out = append(out, st.observers[id])
	}
	return out
}

// set replaces the state from outside the dispatch loop and publishes it.
// Scoped stores use it to follow their parent.
func (st *Store[S, A]) set(s S) {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	st.state = s
	st.version++
	version := st.version
	subs := st.observersLocked()
	st.mu.Unlock()

	publish(subs, version, s)
}

func publish[S any](subs []*stateObserver[S], version uint64, s S) {
	for _, o := range subs {
		o.deliver(version, s)
	}
}
