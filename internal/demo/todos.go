package demo

import (
	"slices"

	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/reducer"
)

// TodoReducer handles actions on a single todo.
var TodoReducer reducer.Reducer[Todo, TodoAction, struct{}] = reduceTodo

func reduceTodo(state *Todo, action TodoAction, _ struct{}) effect.Effect[TodoAction] {
	switch action := action.(type) {
	case Toggle:
		state.Done = !state.Done
	case Rename:
		state.Title = action.Title
	}
	return effect.None[TodoAction]()
}

// reduceTodoList handles additions and removals. It runs after the
// per-todo reducer so that an element action never observes a list that
// shrank during the same dispatch.
func reduceTodoList(state *State, action Action, _ Environment) effect.Effect[Action] {
	switch action := action.(type) {
	case AddTodo:
		state.Todos = append(slices.Clone(state.Todos), Todo{ID: state.NextID, Title: action.Title})
		state.NextID++

	case RemoveTodo:
		if action.Index < 0 || action.Index >= len(state.Todos) {
			return effect.None[Action]()
		}
		state.Todos = slices.Delete(slices.Clone(state.Todos), action.Index, action.Index+1)
	}
	return effect.None[Action]()
}

var todosLens = reducer.Lens[State, []Todo]{
	Get: func(s State) []Todo { return s.Todos },
	Set: func(s *State, todos []Todo) { s.Todos = todos },
}

var todoAtPrism = reducer.Prism[Action, reducer.Indexed[TodoAction]]{
	Extract: func(a Action) (reducer.Indexed[TodoAction], bool) {
		at, ok := a.(TodoAt)
		return at.Indexed, ok
	},
	Embed: func(i reducer.Indexed[TodoAction]) Action { return TodoAt{i} },
}
