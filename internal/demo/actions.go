package demo

import (
	"fmt"

	"github.com/roach88/unidir/internal/reducer"
)

// Action is any action the demo application understands.
type Action interface {
	fmt.Stringer
	isAction()
}

// CounterAction is an action handled by the counter feature.
type CounterAction interface {
	Action
	isCounterAction()
}

// Counter actions.
type (
	Increment       struct{}
	Decrement       struct{}
	IncrementLater  struct{}
	CancelIncrement struct{}
	Reset           struct{}
	RequestFact     struct{}
	FactLoaded      struct{ Fact string }
)

// Todo list actions.
type (
	AddTodo    struct{ Title string }
	RemoveTodo struct{ Index int }
	// TodoAt addresses one todo by position.
	TodoAt struct{ reducer.Indexed[TodoAction] }
)

// TodoAction is an action on a single todo.
type TodoAction interface {
	fmt.Stringer
	isTodoAction()
}

// Single todo actions.
type (
	Toggle struct{}
	Rename struct{ Title string }
)

// Editor actions.
type (
	OpenEditor  struct{}
	CloseEditor struct{}
)

// EditorAction is an action handled by the draft editor while it is open.
type EditorAction interface {
	Action
	isEditorAction()
}

// Draft editor actions.
type (
	Type   struct{ Text string }
	Submit struct{}
)

// Timer collection actions.
type (
	AddTimer    struct{ Name string }
	RemoveTimer struct{ Name string }
	// TimerAt addresses one timer by name.
	TimerAt struct{ reducer.Keyed[string, TimerAction] }
)

// TimerAction is an action on a single timer.
type TimerAction interface {
	fmt.Stringer
	isTimerAction()
}

// Single timer actions.
type (
	Start struct{ Ticks int }
	Stop  struct{}
	Tick  struct{}
)

func (Increment) isAction()       {}
func (Decrement) isAction()       {}
func (IncrementLater) isAction()  {}
func (CancelIncrement) isAction() {}
func (Reset) isAction()           {}
func (RequestFact) isAction()     {}
func (FactLoaded) isAction()      {}
func (AddTodo) isAction()         {}
func (RemoveTodo) isAction()      {}
func (TodoAt) isAction()          {}
func (OpenEditor) isAction()      {}
func (CloseEditor) isAction()     {}
func (Type) isAction()            {}
func (Submit) isAction()          {}
func (AddTimer) isAction()        {}
func (RemoveTimer) isAction()     {}
func (TimerAt) isAction()         {}

func (Increment) isCounterAction()       {}
func (Decrement) isCounterAction()       {}
func (IncrementLater) isCounterAction()  {}
func (CancelIncrement) isCounterAction() {}
func (Reset) isCounterAction()           {}
func (RequestFact) isCounterAction()     {}
func (FactLoaded) isCounterAction()      {}

func (Toggle) isTodoAction() {}
func (Rename) isTodoAction() {}

func (Type) isEditorAction()   {}
func (Submit) isEditorAction() {}

func (Start) isTimerAction() {}
func (Stop) isTimerAction()  {}
func (Tick) isTimerAction()  {}

func (Increment) String() string       { return "increment" }
func (Decrement) String() string       { return "decrement" }
func (IncrementLater) String() string  { return "increment_later" }
func (CancelIncrement) String() string { return "cancel_increment" }
func (Reset) String() string           { return "reset" }
func (RequestFact) String() string     { return "request_fact" }
func (a FactLoaded) String() string    { return fmt.Sprintf("fact_loaded(fact=%q)", a.Fact) }
func (a AddTodo) String() string       { return fmt.Sprintf("add_todo(title=%q)", a.Title) }
func (a RemoveTodo) String() string    { return fmt.Sprintf("remove_todo(index=%d)", a.Index) }
func (a TodoAt) String() string        { return "todo" + a.Indexed.String() }
func (Toggle) String() string          { return "toggle" }
func (a Rename) String() string        { return fmt.Sprintf("rename(title=%q)", a.Title) }
func (OpenEditor) String() string      { return "open_editor" }
func (CloseEditor) String() string     { return "close_editor" }
func (a Type) String() string          { return fmt.Sprintf("type(text=%q)", a.Text) }
func (Submit) String() string          { return "submit" }
func (a AddTimer) String() string      { return fmt.Sprintf("add_timer(name=%q)", a.Name) }
func (a RemoveTimer) String() string   { return fmt.Sprintf("remove_timer(name=%q)", a.Name) }
func (a TimerAt) String() string       { return "timer" + a.Keyed.String() }
func (a Start) String() string         { return fmt.Sprintf("start(ticks=%d)", a.Ticks) }
func (Stop) String() string            { return "stop" }
func (Tick) String() string            { return "tick" }

// TodoAtIndex builds a TodoAt action.
func TodoAtIndex(index int, action TodoAction) TodoAt {
	return TodoAt{reducer.Indexed[TodoAction]{Index: index, Action: action}}
}

// TimerNamed builds a TimerAt action.
func TimerNamed(name string, action TimerAction) TimerAt {
	return TimerAt{reducer.Keyed[string, TimerAction]{Key: name, Action: action}}
}
