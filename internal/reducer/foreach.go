package reducer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/unidir/internal/effect"
)

// Indexed carries an element action together with the position of the
// element it targets.
type Indexed[A any] struct {
	Index  int
	Action A
}

// String renders the action as "[index] action".
func (i Indexed[A]) String() string {
	return fmt.Sprintf("[%d] %v", i.Index, i.Action)
}

// Keyed carries an element action together with the key of the element it
// targets.
type Keyed[K comparable, A any] struct {
	Key    K
	Action A
}

// String renders the action as "[key] action".
func (k Keyed[K, A]) String() string {
	return fmt.Sprintf("[%v] %v", k.Key, k.Action)
}

// ForEachIndexed lifts an element reducer across a slice.
//
// The slice is copied before the updated element is written back, so
// states published earlier never change underneath their observers.
//
// The element is chosen by the index carried in the action. The index must
// be within bounds when the action is reduced; an out-of-range index is a
// programming error and panics with a *PreconditionError. This typically
// happens when a reducer that removes elements runs before this one for the
// same action. Run the element reducer first, or resequence the removal
// through an effect.
func ForEachIndexed[GS, GA, GE, ES, EA, EE any](
	element Reducer[ES, EA, EE],
	lens Lens[GS, []ES],
	prism Prism[GA, Indexed[EA]],
	toElementEnv func(GE) EE,
) Reducer[GS, GA, GE] {
	return func(state *GS, action GA, env GE) effect.Effect[GA] {
		ia, ok := prism.Extract(action)
		if !ok {
			return effect.None[GA]()
		}

		elements := lens.Get(*state)
		if ia.Index < 0 || ia.Index >= len(elements) {
			panic(NewIndexOutOfRangeError(fmt.Sprint(action), ia.Index, len(elements)))
		}

		el := elements[ia.Index]
		eff := element.Run(&el, ia.Action, toElementEnv(env))
		elements = slices.Clone(elements)
		elements[ia.Index] = el
		lens.Set(state, elements)

		index := ia.Index
		return effect.Map(eff, func(ea EA) GA {
			return prism.Embed(Indexed[EA]{Index: index, Action: ea})
		})
	}
}

// ForEachKeyed lifts an element reducer across a map.
//
// The element is chosen by the key carried in the action. Unlike
// ForEachIndexed, a missing key is not an error: the action is ignored.
func ForEachKeyed[GS, GA, GE any, K comparable, ES, EA, EE any](
	element Reducer[ES, EA, EE],
	lens Lens[GS, map[K]ES],
	prism Prism[GA, Keyed[K, EA]],
	toElementEnv func(GE) EE,
) Reducer[GS, GA, GE] {
	return func(state *GS, action GA, env GE) effect.Effect[GA] {
		ka, ok := prism.Extract(action)
		if !ok {
			return effect.None[GA]()
		}

		elements := lens.Get(*state)
		el, ok := elements[ka.Key]
		if !ok {
			return effect.None[GA]()
		}

		eff := element.Run(&el, ka.Action, toElementEnv(env))
		elements = maps.Clone(elements)
		elements[ka.Key] = el
		lens.Set(state, elements)

		key := ka.Key
		return effect.Map(eff, func(ea EA) GA {
			return prism.Embed(Keyed[K, EA]{Key: key, Action: ea})
		})
	}
}
