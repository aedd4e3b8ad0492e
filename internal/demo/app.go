package demo

import (
	"slices"

	"github.com/roach88/unidir/internal/reducer"
)

// Reducer is the whole application: every feature pulled back into State
// and Action.
var Reducer = reducer.Combine(
	reducer.Pullback(
		CounterReducer,
		counterLens,
		reducer.Case[Action, CounterAction](),
		reducer.SameEnv[Environment],
	),
	reducer.ForEachIndexed(
		TodoReducer,
		todosLens,
		todoAtPrism,
		noEnv,
	),
	reducer.Reducer[State, Action, Environment](reduceTodoList),
	reducer.Pullback(
		reducer.Optional(EditorReducer),
		editorLens,
		reducer.Case[Action, EditorAction](),
		noEnv,
	),
	reducer.Reducer[State, Action, Environment](reduceEditorLifecycle),
	reducer.ForEachKeyed(
		TimerReducer,
		timersLens,
		timerAtPrism,
		reducer.SameEnv[Environment],
	),
	reducer.Reducer[State, Action, Environment](reduceTimerSet),
)

var counterLens = reducer.Lens[State, Counter]{
	Get: func(s State) Counter { return s.Counter },
	Set: func(s *State, c Counter) { s.Counter = c },
}

func noEnv(Environment) struct{} { return struct{}{} }

// App describes a runnable application for the CLI and scenario harness.
type App struct {
	Name        string
	Description string
	Initial     func() State
	Reducer     reducer.Reducer[State, Action, Environment]
}

var apps = map[string]App{
	"counter": {
		Name:        "counter",
		Description: "counter feature only",
		Initial:     NewState,
		Reducer: reducer.Pullback(
			CounterReducer,
			counterLens,
			reducer.Case[Action, CounterAction](),
			reducer.SameEnv[Environment],
		),
	},
	"todos": {
		Name:        "todos",
		Description: "counter, todo list, draft editor and timers",
		Initial:     NewState,
		Reducer:     Reducer,
	},
}

// Lookup returns the application registered under name.
func Lookup(name string) (App, bool) {
	app, ok := apps[name]
	return app, ok
}

// Names returns the registered application names in sorted order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
