package store

import "github.com/roach88/unidir/internal/effect"

// Scope derives a child store that sees a projection of parent's state and
// forwards its actions to parent.
//
// The child owns a copy of project(parent state); it is not a view. Sending
// an action to the child sends embed(action) to parent and then re-projects
// the parent's state into the child. The child never changes its state on
// its own; all authority stays with parent.
//
// The child follows parent: every state parent publishes is projected and
// published again by the child, even when the projection did not change.
// project therefore runs once for the initial capture, once when the child
// attaches to parent, and once per parent publication afterwards.
//
// The child inherits parent's observer and warning handler unless opts
// override them. Close on the child detaches it from parent.
func Scope[S, A, L, LA any](parent *Store[S, A], project func(S) L, embed func(LA) A, opts ...Option) *Store[L, LA] {
	o := applyOptions(options{
		name:     parent.name + "/scope",
		observer: parent.observer,
		onWarn:   parent.onWarn,
		now:      parent.now,
		ctx:      parent.ctx,
	}, opts)

	child := newStore[L, LA](project(parent.State()), func(local *L, action LA) effect.Effect[LA] {
		parent.Send(embed(action))
		*local = project(parent.State())
		return effect.None[LA]()
	}, o)

	detach := parent.observe(func(s S) {
		child.set(project(s))
	})

	child.mu.Lock()
	child.detach = detach
	child.mu.Unlock()

	return child
}

// ScopeState is Scope with actions forwarded unchanged.
func ScopeState[S, A, L any](parent *Store[S, A], project func(S) L, opts ...Option) *Store[L, A] {
	return Scope(parent, project, func(a A) A { return a }, opts...)
}
