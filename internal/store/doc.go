// Package store implements the Store: the single owner of an application's
// state and the dispatch loop that advances it.
//
// ARCHITECTURE:
//
// Single-Writer Dispatch Loop:
// A store reduces one action at a time. Send appends to a FIFO queue and
// the goroutine that finds the store idle becomes the drainer. It keeps
// reducing until the queue is empty. This ensures:
// - State is never mutated concurrently
// - Follow-up actions are processed breadth-first
// - The outermost Send returns only once everything it caused
// synchronously has been reduced
//
// Dispatch Flow:
// 1. Pop the next action
// 2. Reduce it against a working copy of the state
// 3. Write the copy back and publish it to observers (always, even if unchanged)
// 4. Subscribe the returned effect; synchronous output is queued at the tail
// 5. Repeat until the queue is empty
//
// Asynchronous effect output arrives from other goroutines. It is appended
// to the queue and either picked up by the active drainer or drained by the
// delivering goroutine itself.
//
// Derived Stores:
// Scope creates a child store holding a projection of the parent's state.
// Children forward actions to the parent and follow every parent
// publication. There is no deduplication between levels; Subscribe is the
// only place where repeated values are suppressed.
//
// Misuse:
// A reducer that calls Send directly is reported as a Warning. The action
// is queued behind the current one and execution continues.
package store
