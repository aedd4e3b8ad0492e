package reducer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unidir/internal/effect"
)

// Test domain: an app with a counter and a list of toggles.

type appState struct {
	Counter counterState
	Toggles []bool
	Named   map[string]bool
	Editor  *counterState
}

type counterState struct {
	Count int
}

type appAction interface {
	fmt.Stringer
	isAppAction()
}

type counterAction struct{ Delta int }
type toggleAction struct{ Indexed[string] }
type namedAction struct{ Keyed[string, string] }
type otherAction struct{}

func (counterAction) isAppAction() {}
func (toggleAction) isAppAction()  {}
func (namedAction) isAppAction()   {}
func (otherAction) isAppAction()   {}

func (a counterAction) String() string { return fmt.Sprintf("counter(%d)", a.Delta) }
func (a toggleAction) String() string  { return "toggle" + a.Indexed.String() }
func (a namedAction) String() string   { return "named" + a.Keyed.String() }
func (otherAction) String() string     { return "other" }

type env struct{ Step int }

var counterLens = Lens[appState, counterState]{
	Get: func(s appState) counterState { return s.Counter },
	Set: func(s *appState, c counterState) { s.Counter = c },
}

var counterCase = Case[appAction, counterAction]()

func counterReducer(state *counterState, action counterAction, step int) effect.Effect[counterAction] {
	state.Count += action.Delta * step
	if state.Count < 0 {
		state.Count = 0
		return effect.Just(counterAction{Delta: 0})
	}
	return effect.None[counterAction]()
}

func collect[A any](t *testing.T, e effect.Effect[A]) []A {
	t.Helper()
	var out []A
	completed := false
	e.Subscribe(func(a A) { out = append(out, a) }, func() { completed = true })
	require.True(t, completed, "effect must complete synchronously in this test")
	return out
}

func TestEmpty(t *testing.T) {
	s := counterState{Count: 3}
	eff := Empty[counterState, counterAction, int]()(&s, counterAction{Delta: 1}, 1)
	assert.True(t, eff.IsNone())
	assert.Equal(t, 3, s.Count)
}

func TestRun_NilReducer(t *testing.T) {
	var r Reducer[counterState, counterAction, int]
	s := counterState{}
	assert.True(t, r.Run(&s, counterAction{Delta: 1}, 1).IsNone())
	assert.Equal(t, 0, s.Count)
}

func TestCombine_RunsInOrderOnSameState(t *testing.T) {
	var seen []int
	double := func(s *int, a string, _ struct{}) effect.Effect[string] {
		*s *= 2
		seen = append(seen, *s)
		return effect.Just("double:" + a)
	}
	inc := func(s *int, a string, _ struct{}) effect.Effect[string] {
		*s++
		seen = append(seen, *s)
		return effect.Just("inc:"+a, "inc2:"+a)
	}

	r := Combine[int, string, struct{}](double, inc)
	s := 5
	eff := r(&s, "x", struct{}{})

	assert.Equal(t, 11, s)
	assert.Equal(t, []int{10, 11}, seen, "second reducer sees first reducer's mutation")
	assert.Equal(t, []string{"double:x", "inc:x", "inc2:x"}, collect(t, eff))
}

func TestCombine_EquivalentToSequentialApplication(t *testing.T) {
	r1 := Reducer[int, int, struct{}](func(s *int, a int, _ struct{}) effect.Effect[int] {
		*s += a
		return effect.Just(*s)
	})
	r2 := Reducer[int, int, struct{}](func(s *int, a int, _ struct{}) effect.Effect[int] {
		*s *= a
		return effect.Just(-*s)
	})

	for _, tc := range []struct{ state, action int }{{0, 1}, {3, 2}, {-4, 5}, {7, 0}} {
		combined := tc.state
		got := collect(t, r1.Combined(r2)(&combined, tc.action, struct{}{}))

		manual := tc.state
		want := collect(t, r1(&manual, tc.action, struct{}{}))
		want = append(want, collect(t, r2(&manual, tc.action, struct{}{}))...)

		assert.Equal(t, manual, combined, "state for %+v", tc)
		assert.Equal(t, want, got, "effects for %+v", tc)
	}
}

func TestCombine_SkipsNilReducers(t *testing.T) {
	r := Combine[int, int, struct{}](nil, func(s *int, _ int, _ struct{}) effect.Effect[int] {
		*s = 1
		return effect.None[int]()
	}, nil)
	s := 0
	assert.True(t, r(&s, 0, struct{}{}).IsNone())
	assert.Equal(t, 1, s)
}

func TestPullback_MutatesLocalStateAndEmbedsEffects(t *testing.T) {
	r := Pullback(
		Reducer[counterState, counterAction, int](counterReducer),
		counterLens,
		counterCase,
		func(e env) int { return e.Step },
	)

	s := appState{Counter: counterState{Count: 1}}
	eff := r(&s, counterAction{Delta: 2}, env{Step: 3})
	assert.Equal(t, 7, s.Counter.Count)
	assert.True(t, eff.IsNone())

	eff = r(&s, counterAction{Delta: -10}, env{Step: 1})
	assert.Equal(t, 0, s.Counter.Count)
	assert.Equal(t, []appAction{counterAction{Delta: 0}}, collect(t, eff))
}

func TestPullback_IgnoresActionsOutsideItsDomain(t *testing.T) {
	lensCalls := 0
	lens := Lens[appState, counterState]{
		Get: func(s appState) counterState { lensCalls++; return s.Counter },
		Set: func(s *appState, c counterState) { lensCalls++; s.Counter = c },
	}
	envCalls := 0
	r := Pullback(
		Reducer[counterState, counterAction, int](counterReducer),
		lens,
		counterCase,
		func(e env) int { envCalls++; return e.Step },
	)

	states := []appState{
		{},
		{Counter: counterState{Count: 42}, Toggles: []bool{true}},
		{Named: map[string]bool{"a": true}},
	}
	actions := []appAction{
		otherAction{},
		toggleAction{Indexed[string]{Index: 0, Action: "flip"}},
		namedAction{Keyed[string, string]{Key: "a", Action: "flip"}},
	}

	for _, before := range states {
		for _, a := range actions {
			s := before
			eff := r(&s, a, env{Step: 1})
			assert.True(t, eff.IsNone(), "action %s", a)
			assert.Equal(t, before, s, "action %s", a)
		}
	}
	assert.Zero(t, lensCalls)
	assert.Zero(t, envCalls)
}

func TestPullback_NestedWithComposedOptics(t *testing.T) {
	type outer struct{ App appState }
	type wrapped struct{ Inner appAction }

	appLens := Lens[outer, appState]{
		Get: func(o outer) appState { return o.App },
		Set: func(o *outer, s appState) { o.App = s },
	}
	wrapPrism := Prism[wrapped, appAction]{
		Extract: func(w wrapped) (appAction, bool) { return w.Inner, w.Inner != nil },
		Embed:   func(a appAction) wrapped { return wrapped{Inner: a} },
	}

	r := Pullback(
		Reducer[counterState, counterAction, int](counterReducer),
		ComposeLens(appLens, counterLens),
		ComposePrism(wrapPrism, counterCase),
		func(step int) int { return step },
	)

	s := outer{}
	eff := r(&s, wrapped{Inner: counterAction{Delta: -1}}, 1)
	assert.Equal(t, 0, s.App.Counter.Count)
	assert.Equal(t, []wrapped{{Inner: counterAction{Delta: 0}}}, collect(t, eff))

	eff = r(&s, wrapped{Inner: otherAction{}}, 1)
	assert.True(t, eff.IsNone())
	eff = r(&s, wrapped{}, 1)
	assert.True(t, eff.IsNone())
}

func TestIdentityOptics(t *testing.T) {
	r := Pullback(
		Reducer[int, int, struct{}](func(s *int, a int, _ struct{}) effect.Effect[int] {
			*s += a
			return effect.None[int]()
		}),
		IdentityLens[int](),
		IdentityPrism[int](),
		SameEnv[struct{}],
	)
	s := 1
	r(&s, 2, struct{}{})
	assert.Equal(t, 3, s)
}

func TestOptional(t *testing.T) {
	r := Optional(Reducer[counterState, counterAction, int](counterReducer))

	var absent *counterState
	eff := r(&absent, counterAction{Delta: 5}, 1)
	assert.True(t, eff.IsNone())
	assert.Nil(t, absent)

	original := &counterState{Count: 1}
	present := original
	eff = r(&present, counterAction{Delta: 5}, 1)
	assert.True(t, eff.IsNone())
	assert.Equal(t, 6, present.Count)
	assert.Equal(t, 1, original.Count, "the previous value is not mutated")
}

func TestOptional_ComposedWithPullback(t *testing.T) {
	editorLens := Lens[appState, *counterState]{
		Get: func(s appState) *counterState { return s.Editor },
		Set: func(s *appState, e *counterState) { s.Editor = e },
	}
	r := Pullback(
		Optional(Reducer[counterState, counterAction, int](counterReducer)),
		editorLens,
		counterCase,
		func(e env) int { return e.Step },
	)

	s := appState{}
	assert.True(t, r(&s, counterAction{Delta: 1}, env{Step: 1}).IsNone())
	assert.Nil(t, s.Editor)

	s.Editor = &counterState{}
	r(&s, counterAction{Delta: 4}, env{Step: 1})
	assert.Equal(t, 4, s.Editor.Count)
}

var togglesLens = Lens[appState, []bool]{
	Get: func(s appState) []bool { return s.Toggles },
	Set: func(s *appState, ts []bool) { s.Toggles = ts },
}

var togglePrism = Prism[appAction, Indexed[string]]{
	Extract: func(a appAction) (Indexed[string], bool) {
		t, ok := a.(toggleAction)
		return t.Indexed, ok
	},
	Embed: func(i Indexed[string]) appAction { return toggleAction{i} },
}

func toggleReducer(state *bool, action string, _ struct{}) effect.Effect[string] {
	switch action {
	case "flip":
		*state = !*state
		return effect.Just("flipped")
	}
	return effect.None[string]()
}

func TestForEachIndexed(t *testing.T) {
	r := ForEachIndexed(
		Reducer[bool, string, struct{}](toggleReducer),
		togglesLens,
		togglePrism,
		func(env) struct{} { return struct{}{} },
	)

	s := appState{Toggles: []bool{false, false, true}}
	eff := r(&s, toggleAction{Indexed[string]{Index: 1, Action: "flip"}}, env{})

	assert.Equal(t, []bool{false, true, true}, s.Toggles)
	assert.Equal(t,
		[]appAction{toggleAction{Indexed[string]{Index: 1, Action: "flipped"}}},
		collect(t, eff),
		"element effects are re-embedded with their index")

	eff = r(&s, otherAction{}, env{})
	assert.True(t, eff.IsNone())
	assert.Equal(t, []bool{false, true, true}, s.Toggles)
}

func TestForEach_CopiesOnWrite(t *testing.T) {
	indexed := ForEachIndexed(
		Reducer[bool, string, struct{}](toggleReducer),
		togglesLens,
		togglePrism,
		func(env) struct{} { return struct{}{} },
	)
	keyed := ForEachKeyed(
		Reducer[bool, string, struct{}](toggleReducer),
		namedLens,
		namedPrism,
		func(env) struct{} { return struct{}{} },
	)

	before := appState{Toggles: []bool{false}, Named: map[string]bool{"a": false}}
	s := before
	indexed(&s, toggleAction{Indexed[string]{Index: 0, Action: "flip"}}, env{})
	keyed(&s, namedAction{Keyed[string, string]{Key: "a", Action: "flip"}}, env{})

	assert.Equal(t, []bool{true}, s.Toggles)
	assert.Equal(t, map[string]bool{"a": true}, s.Named)
	assert.Equal(t, []bool{false}, before.Toggles, "earlier state values are not mutated")
	assert.Equal(t, map[string]bool{"a": false}, before.Named)
}

func TestForEachIndexed_OutOfRangePanics(t *testing.T) {
	r := ForEachIndexed(
		Reducer[bool, string, struct{}](toggleReducer),
		togglesLens,
		togglePrism,
		func(env) struct{} { return struct{}{} },
	)

	for _, index := range []int{-1, 2, 10} {
		s := appState{Toggles: []bool{false, false}}
		action := toggleAction{Indexed[string]{Index: index, Action: "flip"}}

		var recovered any
		func() {
			defer func() { recovered = recover() }()
			r(&s, action, env{})
		}()

		require.NotNil(t, recovered, "index %d", index)
		err, ok := recovered.(error)
		require.True(t, ok)
		assert.True(t, IsIndexOutOfRange(err))

		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, index, pe.Index)
		assert.Equal(t, 2, pe.Len)
		assert.Equal(t, action.String(), pe.Action)
		assert.Contains(t, err.Error(), "INDEX_OUT_OF_RANGE")
		assert.Contains(t, err.Error(), fmt.Sprintf("[0, %d)", 2))
	}
}

func TestForEachIndexed_RemovalBeforeElementReducerPanics(t *testing.T) {
	remove := Reducer[appState, appAction, env](func(s *appState, a appAction, _ env) effect.Effect[appAction] {
		if ta, ok := a.(toggleAction); ok && ta.Action == "flip" {
			s.Toggles = append(s.Toggles[:ta.Index], s.Toggles[ta.Index+1:]...)
		}
		return effect.None[appAction]()
	})
	element := ForEachIndexed(
		Reducer[bool, string, struct{}](toggleReducer),
		togglesLens,
		togglePrism,
		func(env) struct{} { return struct{}{} },
	)

	s := appState{Toggles: []bool{true, false}}
	assert.Panics(t, func() {
		Combine(remove, element)(&s, toggleAction{Indexed[string]{Index: 1, Action: "flip"}}, env{})
	})

	s = appState{Toggles: []bool{true, false}}
	assert.NotPanics(t, func() {
		Combine(element, remove)(&s, toggleAction{Indexed[string]{Index: 1, Action: "flip"}}, env{})
	})
	assert.Equal(t, []bool{true}, s.Toggles)
}

var namedLens = Lens[appState, map[string]bool]{
	Get: func(s appState) map[string]bool { return s.Named },
	Set: func(s *appState, m map[string]bool) { s.Named = m },
}

var namedPrism = Prism[appAction, Keyed[string, string]]{
	Extract: func(a appAction) (Keyed[string, string], bool) {
		n, ok := a.(namedAction)
		return n.Keyed, ok
	},
	Embed: func(k Keyed[string, string]) appAction { return namedAction{k} },
}

func TestForEachKeyed(t *testing.T) {
	r := ForEachKeyed(
		Reducer[bool, string, struct{}](toggleReducer),
		namedLens,
		namedPrism,
		func(env) struct{} { return struct{}{} },
	)

	s := appState{Named: map[string]bool{"a": false, "b": true}}
	eff := r(&s, namedAction{Keyed[string, string]{Key: "b", Action: "flip"}}, env{})

	assert.Equal(t, map[string]bool{"a": false, "b": false}, s.Named)
	assert.Equal(t,
		[]appAction{namedAction{Keyed[string, string]{Key: "b", Action: "flipped"}}},
		collect(t, eff))
}

func TestForEachKeyed_MissingKeyIsNoop(t *testing.T) {
	r := ForEachKeyed(
		Reducer[bool, string, struct{}](toggleReducer),
		namedLens,
		namedPrism,
		func(env) struct{} { return struct{}{} },
	)

	s := appState{Named: map[string]bool{"a": true}}
	var eff effect.Effect[appAction]
	assert.NotPanics(t, func() {
		eff = r(&s, namedAction{Keyed[string, string]{Key: "missing", Action: "flip"}}, env{})
	})
	assert.True(t, eff.IsNone())
	assert.Equal(t, map[string]bool{"a": true}, s.Named)

	empty := appState{}
	assert.True(t, r(&empty, namedAction{Keyed[string, string]{Key: "a", Action: "flip"}}, env{}).IsNone())
	assert.Nil(t, empty.Named)
}

func TestIndexedAndKeyedStrings(t *testing.T) {
	assert.Equal(t, "[3] flip", Indexed[string]{Index: 3, Action: "flip"}.String())
	assert.Equal(t, "[a] flip", Keyed[string, string]{Key: "a", Action: "flip"}.String())
	assert.Equal(t, "toggle[0] flip", toggleAction{Indexed[string]{Action: "flip"}}.String())
}
