package demo

// State is the whole application state.
type State struct {
	Counter Counter          `json:"counter"`
	Todos   []Todo           `json:"todos"`
	NextID  int              `json:"next_id"`
	Editor  *Editor          `json:"editor,omitempty"`
	Timers  map[string]Timer `json:"timers"`
}

// Counter is the counter feature's state.
type Counter struct {
	Count int    `json:"count"`
	Fact  string `json:"fact,omitempty"`
}

// Todo is one entry of the todo list.
type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Editor holds the draft of a todo being written.
type Editor struct {
	Draft string `json:"draft"`
}

// Timer is a named countdown that ticks once per interval.
type Timer struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	Elapsed   int    `json:"elapsed"`
	Running   bool   `json:"running"`
}

// NewState returns the initial application state.
func NewState() State {
	return State{
		Todos:  []Todo{},
		NextID: 1,
		Timers: map[string]Timer{},
	}
}
