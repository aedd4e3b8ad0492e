// Package harness runs scripted scenarios against the demo applications.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: editor_submit
//	description: "Submitting a draft adds a todo and closes the editor"
//	app: todos
//	steps:
//	  - send: open_editor
//	    expect: { editor: { draft: "" } }
//	  - send: type
//	    args: { text: milk }
//	    expect: { editor: { draft: milk } }
//	  - send: submit
//	  - receive: add_todo
//	    args: { title: milk }
//	    expect: { todos: [{ id: 1, title: milk, done: false }], next_id: 2 }
//	  - receive: close_editor
//	    expect: { editor: null }
//	  - advance: 1s
//	assertions:
//	  - type: trace_order
//	    actions: [submit, add_todo, close_editor]
//
// Steps run through a teststore.TestStore. send and receive name an action
// as accepted by demo.Decode. expect is a JSON merge patch (RFC 7396)
// applied to the previous state; a step without expect asserts that the
// state did not change. advance moves the virtual scheduler forward.
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order (not necessarily adjacent)
//   - trace_count: an action appears exactly N times
//   - final_state: the value at a dotted path of the final state equals a value
//
// # Validation
//
// Files are checked against an embedded CUE schema and then decoded with
// strict field checking, so misspelled keys are rejected.
//
// # Deterministic Testing
//
// Every run uses a fresh virtual scheduler, an isolated cancellation
// registry and a logical clock starting at zero, so traces are identical
// across runs and can be compared against golden files.
package harness
