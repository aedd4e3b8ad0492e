package demo

import (
	"github.com/roach88/unidir/internal/effect"
	"github.com/roach88/unidir/internal/reducer"
)

// EditorReducer edits the draft while the editor is open.
var EditorReducer reducer.Reducer[Editor, EditorAction, struct{}] = reduceEditor

func reduceEditor(state *Editor, action EditorAction, _ struct{}) effect.Effect[EditorAction] {
	switch action := action.(type) {
	case Type:
		state.Draft += action.Text
	}
	return effect.None[EditorAction]()
}

// reduceEditorLifecycle opens and closes the editor and turns a submitted
// draft into a new todo.
func reduceEditorLifecycle(state *State, action Action, _ Environment) effect.Effect[Action] {
	switch action.(type) {
	case OpenEditor:
		if state.Editor == nil {
			state.Editor = &Editor{}
		}

	case CloseEditor:
		state.Editor = nil

	case Submit:
		if state.Editor == nil || state.Editor.Draft == "" {
			return effect.None[Action]()
		}
		return effect.Just[Action](AddTodo{Title: state.Editor.Draft}, CloseEditor{})
	}
	return effect.None[Action]()
}

var editorLens = reducer.Lens[State, *Editor]{
	Get: func(s State) *Editor { return s.Editor },
	Set: func(s *State, e *Editor) { s.Editor = e },
}
