package demo

import (
	"maps"

	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/reducer"
)

// timerID identifies the pending tick of one timer.
type timerID struct{ name string }

// TimerReducer runs a single countdown timer.
var TimerReducer reducer.Reducer[Timer, TimerAction, Environment] = reduceTimer

func reduceTimer(state *Timer, action TimerAction, env Environment) effect.Effect[TimerAction] {
	switch action := action.(type) {
	case Start:
		if action.Ticks <= 0 {
			return effect.None[TimerAction]()
		}
		state.Remaining = action.Ticks
		state.Running = true
		return scheduleTick(state.Name, env)

	case Stop:
		state.Running = false
		return effect.CancelIn[TimerAction](env.Registry, timerID{state.Name})

	case Tick:
		if !state.Running {
			return effect.None[TimerAction]()
		}
		state.Elapsed++
		state.Remaining--
		if state.Remaining <= 0 {
			state.Running = false
			return effect.None[TimerAction]()
		}
		return scheduleTick(state.Name, env)
	}
	return effect.None[TimerAction]()
}

// scheduleTick delivers one Tick after the interval. A newer tick replaces
// any tick still pending for the same timer.
func scheduleTick(name string, env Environment) effect.Effect[TimerAction] {
	return effect.Deferred(effect.Just[TimerAction](Tick{}), env.Interval, env.Scheduler).
		CancellableIn(env.Registry, timerID{name}, true)
}

// reduceTimerSet adds and removes timers. Removing a timer cancels its
// pending tick.
func reduceTimerSet(state *State, action Action, env Environment) effect.Effect[Action] {
	switch action := action.(type) {
	case AddTimer:
		if _, ok := state.Timers[action.Name]; ok {
			return effect.None[Action]()
		}
		timers := maps.Clone(state.Timers)
		if timers == nil {
			timers = map[string]Timer{}
		}
		timers[action.Name] = Timer{Name: action.Name}
		state.Timers = timers

	case RemoveTimer:
		if _, ok := state.Timers[action.Name]; !ok {
			return effect.None[Action]()
		}
		timers := maps.Clone(state.Timers)
		delete(timers, action.Name)
		state.Timers = timers
		return effect.CancelIn[Action](env.Registry, timerID{action.Name})
	}
	return effect.None[Action]()
}

var timersLens = reducer.Lens[State, map[string]Timer]{
	Get: func(s State) map[string]Timer { return s.Timers },
	Set: func(s *State, timers map[string]Timer) { s.Timers = timers },
}

var timerAtPrism = reducer.Prism[Action, reducer.Keyed[string, TimerAction]]{
	Extract: func(a Action) (reducer.Keyed[string, TimerAction], bool) {
		at, ok := a.(TimerAt)
		return at.Keyed, ok
	},
	Embed: func(k reducer.Keyed[string, TimerAction]) Action { return TimerAt{k} },
}
