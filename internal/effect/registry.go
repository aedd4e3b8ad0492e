package effect

import (
	"sync"
	"sync/atomic"
)

// Registry tracks in-flight cancellable effects by token.
//
// A token is any comparable value chosen by the caller. Several independent
// effects may share a token; cancelling the token tears all of them down.
//
// Every mutation of the table happens under one mutex. Disposers are never
// called while that mutex is held: entries are detached first and disposed
// after the lock is released, so a disposer that completes an effect (and
// thereby re-enters the registry to remove its own entry) cannot deadlock.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	handles map[any]map[uint64]*handle // map[token]map[handle_id]*handle
}

// NewRegistry creates an empty registry.
//
// Tests should prefer an isolated registry over DefaultRegistry so that no
// state leaks between test cases.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[any]map[uint64]*handle),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Cancellable and
// Cancel.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// handle is one registered effect subscription.
//
// stopped is set before the disposer runs. It gates delivery for the window
// between registration and attach, when there is no disposer yet.
type handle struct {
	mu        sync.Mutex
	dispose   func()
	cancelled bool
	stopped   atomic.Bool
}

// attach stores the disposer. It reports false when the handle was
// cancelled before the disposer was known; the caller must then dispose.
func (h *handle) attach(dispose func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	h.dispose = dispose
	return true
}

func (h *handle) cancel() {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	h.stopped.Store(true)
	dispose := h.dispose
	h.dispose = nil
	h.mu.Unlock()

	if dispose != nil {
		dispose()
	}
}

// register adds a new handle under token. With cancelInFlight set, every
// handle already registered under token is detached in the same critical
// section and returned so the caller can cancel them.
func (r *Registry) register(token any, cancelInFlight bool) (uint64, *handle, []*handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prior []*handle
	if cancelInFlight {
		prior = detach(r.handles[token])
		delete(r.handles, token)
	}

	r.nextID++
	id := r.nextID
	h := &handle{}
	if r.handles[token] == nil {
		r.handles[token] = make(map[uint64]*handle)
	}
	r.handles[token][id] = h
	return id, h, prior
}

// remove drops one handle. The token entry is deleted with its last handle.
func (r *Registry) remove(token any, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := r.handles[token]
	if byID == nil {
		return
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(r.handles, token)
	}
}

// Cancel disposes every effect currently registered under token.
// Cancelling an unknown token, or cancelling twice, is a no-op.
func (r *Registry) Cancel(token any) {
	r.mu.Lock()
	hs := detach(r.handles[token])
	delete(r.handles, token)
	r.mu.Unlock()

	for _, h := range hs {
		h.cancel()
	}
}

// Len returns the number of tokens with at least one live handle.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Count returns the number of live handles registered under token.
func (r *Registry) Count(token any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles[token])
}

// Tokens returns the tokens that currently have live handles, in no
// particular order.
func (r *Registry) Tokens() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := make([]any, 0, len(r.handles))
	for t := range r.handles {
		tokens = append(tokens, t)
	}
	return tokens
}

func detach(byID map[uint64]*handle) []*handle {
	if len(byID) == 0 {
		return nil
	}
	hs := make([]*handle, 0, len(byID))
	for _, h := range byID {
		hs = append(hs, h)
	}
	return hs
}
