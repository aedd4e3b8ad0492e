package store

import "github.com/roach88/unidir/internal/observability"

// Event types emitted by stores.
const (
	// EventActionReduced is emitted after every reducer run. Data carries
	// "seq", "action" and "state".
	EventActionReduced observability.EventType = "store.action.reduced"

	// EventEffectStarted is emitted when a non-empty effect is subscribed.
	EventEffectStarted observability.EventType = "store.effect.started"

	// EventEffectCompleted is emitted when an effect completes on its own.
	EventEffectCompleted observability.EventType = "store.effect.completed"

	// EventEffectCancelled is emitted for each in-flight effect disposed by
	// Close.
	EventEffectCancelled observability.EventType = "store.effect.cancelled"

	// EventWarning is emitted for every Warning.
	EventWarning observability.EventType = "store.warning"

	// EventClosed is emitted once when the store is closed.
	EventClosed observability.EventType = "store.closed"
)
