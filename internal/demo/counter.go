package demo

import (
	"context"

	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/reducer"
)

// incrementLaterID cancels a pending delayed increment.
type incrementLaterID struct{}

// CounterReducer handles the counter feature.
var CounterReducer reducer.Reducer[Counter, CounterAction, Environment] = reduceCounter

func reduceCounter(state *Counter, action CounterAction, env Environment) effect.Effect[CounterAction] {
	switch action := action.(type) {
	case Increment:
		state.Count++

	case Decrement:
		state.Count--

	case IncrementLater:
		return effect.Deferred(effect.Just[CounterAction](Increment{}), env.Delay, env.Scheduler).
			CancellableIn(env.Registry, incrementLaterID{}, true)

	case CancelIncrement:
		return effect.CancelIn[CounterAction](env.Registry, incrementLaterID{})

	case Reset:
		count := state.Count
		state.Count = 0
		state.Fact = ""
		logger := env.Logger
		return effect.FireAndForget[CounterAction](func() {
			if logger != nil {
				logger.Info("counter reset", "from", count)
			}
		})

	case RequestFact:
		n := state.Count
		facts := env.Facts
		return effect.Future(func(ctx context.Context) CounterAction {
			return FactLoaded{Fact: facts(ctx, n)}
		})

	case FactLoaded:
		state.Fact = action.Fact
	}
	return effect.None[CounterAction]()
}
