package harness

import "encoding/json"

// TraceEvent is one reduced action in a scenario run.
type TraceEvent struct {
	Seq    int64           `json:"seq"`
	Kind   string          `json:"kind"`   // "send" or "receive"
	Name   string          `json:"name"`   // action name as accepted by demo.Decode
	Action string          `json:"action"` // rendered action
	Args   map[string]any  `json:"args,omitempty"`
	State  json.RawMessage `json:"state"` // canonical JSON after the step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every reduced action in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final state as canonical JSON.
	State json.RawMessage `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
