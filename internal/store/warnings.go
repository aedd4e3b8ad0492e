package store

import "fmt"

// WarningKind categorizes misuse diagnostics.
type WarningKind string

const (
	// WarningReentrantSend indicates Send was called while the store's
	// reducer was running, typically because a reducer called Send directly
	// instead of returning an effect. A Send from another goroutine that
	// overlaps a running reducer is reported the same way.
	WarningReentrantSend WarningKind = "REENTRANT_SEND"

	// WarningSendAfterClose indicates Send was called on a closed store.
	// The action is dropped.
	WarningSendAfterClose WarningKind = "SEND_AFTER_CLOSE"
)

// Warning is a non-fatal misuse diagnostic.
//
// Warnings never interrupt the dispatch loop. They are kept on the store
// (see Store.Warnings), emitted to the observer, and passed to the handler
// installed with WithWarningHandler, which may decide to treat them as
// fatal.
type Warning struct {
	// Kind identifies the misuse.
	Kind WarningKind

	// Store is the name of the store that detected it.
	Store string

	// Action is the textual rendering of the action being sent.
	Action string

	// During is the textual rendering of the action being reduced at the
	// time, if any.
	During string

	// Seq is the logical time of the last reduced action.
	Seq int64
}

// String renders the warning for logs and test failures.
func (w Warning) String() string {
	switch w.Kind {
	case WarningReentrantSend:
		return fmt.Sprintf("%s: store %q received %s while reducing %s; the action was queued and will run after the current one",
			w.Kind, w.Store, w.Action, w.During)
	case WarningSendAfterClose:
		return fmt.Sprintf("%s: store %q is closed; dropped %s", w.Kind, w.Store, w.Action)
	default:
		return fmt.Sprintf("%s: store %q action %s", w.Kind, w.Store, w.Action)
	}
}
