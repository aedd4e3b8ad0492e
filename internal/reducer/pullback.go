package reducer

import "github.com/roach88/unidir/internal/effect"

// Pullback lifts a reducer over a local domain into a global one.
//
// For every global action, prism.Extract decides whether the local reducer
// is interested. If it is not, the lifted reducer leaves the state untouched
// and returns the empty effect. Otherwise the local state is read through
// lens, reduced, and written back, and the local effect's actions are
// embedded into the global action type.
func Pullback[GS, GA, GE, LS, LA, LE any](
	local Reducer[LS, LA, LE],
	lens Lens[GS, LS],
	prism Prism[GA, LA],
	toLocalEnv func(GE) LE,
) Reducer[GS, GA, GE] {
	return func(state *GS, action GA, env GE) effect.Effect[GA] {
		la, ok := prism.Extract(action)
		if !ok {
			return effect.None[GA]()
		}

		ls := lens.Get(*state)
		eff := local.Run(&ls, la, toLocalEnv(env))
		lens.Set(state, ls)

		return effect.Map(eff, prism.Embed)
	}
}

// Optional lifts a reducer to state that may be absent.
//
// When the state pointer is nil the action is ignored: nothing is mutated
// and the empty effect is returned. Otherwise r runs against a copy of the
// pointee and the pointer is replaced, leaving the previous value intact.
func Optional[S, A, E any](r Reducer[S, A, E]) Reducer[*S, A, E] {
	return func(state **S, action A, env E) effect.Effect[A] {
		if *state == nil {
			return effect.None[A]()
		}
		local := **state
		eff := r.Run(&local, action, env)
		*state = &local
		return eff
	}
}

// SameEnv passes the environment through unchanged. Use it as the
// environment mapping of a pullback whose local reducer shares the global
// environment.
func SameEnv[E any](e E) E {
	return e
}
