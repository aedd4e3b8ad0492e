package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Kind: "send", Name: "add_todo", Action: `add_todo(title="a")`, Args: map[string]any{"title": "a"}},
		{Seq: 2, Kind: "send", Name: "toggle", Action: "todo[0] toggle", Args: map[string]any{"index": 0}},
		{Seq: 3, Kind: "send", Name: "add_todo", Action: `add_todo(title="b")`, Args: map[string]any{"title": "b"}},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "add_todo", Args: map[string]any{"title": "b"}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "toggle"}), "no args matches any")
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "toggle", Args: map[string]any{"index": int64(0)}}),
		"numbers compare by value")

	err := assertTraceContains(trace, Assertion{Action: "add_todo", Args: map[string]any{"title": "c"}})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "not found in trace")
	assert.Contains(t, err.Error(), "[2] send todo[0] toggle")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"add_todo", "toggle"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"toggle", "add_todo"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toggle (pos 2) should be before add_todo (pos 1)")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"add_todo", "submit"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action: submit")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "add_todo", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "submit", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "toggle", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 occurrences of toggle")
}

func TestAssertFinalState(t *testing.T) {
	state := json.RawMessage(`{"counter":{"count":2},"todos":[{"done":true,"id":1,"title":"milk"}],"timers":{}}`)

	tests := []struct {
		name     string
		path     string
		equals   any
		contains string
	}{
		{name: "scalar", path: "counter.count", equals: 2},
		{name: "array element field", path: "todos.0.title", equals: "milk"},
		{name: "object", path: "todos.0", equals: map[string]any{"id": 1, "title": "milk", "done": true}},
		{name: "empty object", path: "timers", equals: map[string]any{}},
		{name: "wrong value", path: "counter.count", equals: 3, contains: "Actual: counter.count = 2"},
		{name: "missing key", path: "counter.total", equals: 0, contains: `path "counter.total" not found`},
		{name: "index out of range", path: "todos.4", equals: nil, contains: "index 4 out of range (length 1)"},
		{name: "not an index", path: "todos.first", equals: nil, contains: "is not an array index"},
		{name: "descend into scalar", path: "counter.count.x", equals: nil, contains: "cannot descend into number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(state, Assertion{Type: AssertFinalState, Path: tt.path, Equals: tt.equals})
			if tt.contains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestAssertFinalState_WholeState(t *testing.T) {
	state := json.RawMessage(`{"b":1,"a":[]}`)
	err := assertFinalState(state, Assertion{Path: "", Equals: map[string]any{"a": []any{}, "b": 1}})
	assert.NoError(t, err)
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "trace_shape"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "trace_shape"`)
}
