package store

// actionQueue is the FIFO of actions waiting to be reduced.
//
// The queue is unbounded so that an action may synchronously trigger
// arbitrarily many follow-ups without blocking the dispatch loop. It is not
// thread-safe on its own; the owning Store guards it with its mutex.
type actionQueue[A any] struct {
	actions []A
}

func newActionQueue[A any]() *actionQueue[A] {
	return &actionQueue[A]{
		actions: make([]A, 0, 16),
	}
}

// push adds an action to the back of the queue.
func (q *actionQueue[A]) push(a A) {
	q.actions = append(q.actions, a)
}

// pop removes and returns the front action.
// Returns false if the queue is empty.
func (q *actionQueue[A]) pop() (A, bool) {
	var zero A
	if len(q.actions) == 0 {
		return zero, false
	}

	a := q.actions[0]

	// Zero the slot so the backing array does not retain the action.
	q.actions[0] = zero

	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// len returns the number of queued actions.
func (q *actionQueue[A]) len() int {
	return len(q.actions)
}

// clear drops every queued action.
func (q *actionQueue[A]) clear() {
	var zero A
	for i := range q.actions {
		q.actions[i] = zero
	}
	q.actions = q.actions[:0]
}
