package reducer

// Lens focuses on one part of a larger state value.
//
// Get reads the part; Set writes it back into the whole. Set receives a
// pointer so that the containing value is updated in place.
type Lens[G, L any] struct {
	Get func(G) L
	Set func(*G, L)
}

// Prism focuses on one variant of a larger action type.
//
// Extract reports whether a global action carries a local one, and Embed
// wraps a local action back into the global type.
type Prism[G, L any] struct {
	Extract func(G) (L, bool)
	Embed   func(L) G
}

// IdentityLens focuses on the whole value.
func IdentityLens[S any]() Lens[S, S] {
	return Lens[S, S]{
		Get: func(s S) S { return s },
		Set: func(s *S, v S) { *s = v },
	}
}

// IdentityPrism matches every action.
func IdentityPrism[A any]() Prism[A, A] {
	return Prism[A, A]{
		Extract: func(a A) (A, bool) { return a, true },
		Embed:   func(a A) A { return a },
	}
}

// ComposeLens focuses through outer and then inner.
func ComposeLens[G, M, L any](outer Lens[G, M], inner Lens[M, L]) Lens[G, L] {
	return Lens[G, L]{
		Get: func(g G) L { return inner.Get(outer.Get(g)) },
		Set: func(g *G, l L) {
			m := outer.Get(*g)
			inner.Set(&m, l)
			outer.Set(g, m)
		},
	}
}

// ComposePrism matches outer and then inner.
func ComposePrism[G, M, L any](outer Prism[G, M], inner Prism[M, L]) Prism[G, L] {
	return Prism[G, L]{
		Extract: func(g G) (L, bool) {
			m, ok := outer.Extract(g)
			if !ok {
				var zero L
				return zero, false
			}
			return inner.Extract(m)
		},
		Embed: func(l L) G { return outer.Embed(inner.Embed(l)) },
	}
}

// Case builds a prism for one concrete variant V of an interface action
// type G, using a type assertion to extract and a conversion to embed.
// V must implement G; Embed panics otherwise.
//
// Example:
//
//	var counterCase = reducer.Case[AppAction, CounterAction]()
func Case[G any, V any]() Prism[G, V] {
	return Prism[G, V]{
		Extract: func(g G) (V, bool) {
			v, ok := any(g).(V)
			return v, ok
		},
		Embed: func(v V) G {
			return any(v).(G)
		},
	}
}
