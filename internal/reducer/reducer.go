package reducer

import "github.com/roach88/unidir/internal/effect"

// Reducer advances state in response to an action.
//
// The reducer mutates *state in place and returns an effect producing any
// follow-up actions. It must not perform side effects itself; work that
// touches the outside world belongs in the returned effect. A reducer that
// has nothing to do returns effect.None.
type Reducer[S, A, E any] func(state *S, action A, env E) effect.Effect[A]

// Empty returns a reducer that ignores every action.
func Empty[S, A, E any]() Reducer[S, A, E] {
	return func(*S, A, E) effect.Effect[A] {
		return effect.None[A]()
	}
}

// Run invokes r. A nil reducer behaves like Empty.
func (r Reducer[S, A, E]) Run(state *S, action A, env E) effect.Effect[A] {
	if r == nil {
		return effect.None[A]()
	}
	return r(state, action, env)
}

// Combine runs reducers in order against the same state.
//
// Each reducer observes the mutations made by the ones before it. The
// returned effect merges the individual effects in the same order, so
// synchronous actions from the first reducer are delivered before those of
// the second.
func Combine[S, A, E any](reducers ...Reducer[S, A, E]) Reducer[S, A, E] {
	rs := make([]Reducer[S, A, E], 0, len(reducers))
	for _, r := range reducers {
		if r != nil {
			rs = append(rs, r)
		}
	}

	return func(state *S, action A, env E) effect.Effect[A] {
		effects := make([]effect.Effect[A], 0, len(rs))
		for _, r := range rs {
			effects = append(effects, r(state, action, env))
		}
		return effect.Merge(effects...)
	}
}

// Combined returns Combine(r, others...).
func (r Reducer[S, A, E]) Combined(others ...Reducer[S, A, E]) Reducer[S, A, E] {
	return Combine(append([]Reducer[S, A, E]{r}, others...)...)
}
