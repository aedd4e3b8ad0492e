package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/unidir/internal/snapshot"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Kind, event.Action)
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains a step matching the
// specified action name and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Name == assertion.Action && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions appear in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected action, 1-indexed so zero means absent.
	positions := make(map[string]int)
	for i, event := range trace {
		if positions[event.Name] == 0 {
			positions[event.Name] = i + 1
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Name == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState checks the value at a dotted path in the final state.
// Both sides are compared as canonical JSON, so map key order and numeric
// representation do not matter.
func assertFinalState(state json.RawMessage, assertion Assertion) error {
	if len(state) == 0 {
		return fmt.Errorf("final_state: no final state recorded")
	}

	dec := json.NewDecoder(bytes.NewReader(state))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return fmt.Errorf("final_state: decode state: %w", err)
	}

	actual, err := lookupPath(root, assertion.Path)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("value at %q", assertion.Path),
			Actual:   err.Error(),
		}
	}

	want, err := snapshot.Marshal(assertion.Equals)
	if err != nil {
		return fmt.Errorf("final_state: encode expected value: %w", err)
	}
	got, err := snapshot.Marshal(actual)
	if err != nil {
		return fmt.Errorf("final_state: encode actual value: %w", err)
	}

	if !bytes.Equal(want, got) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", displayPath(assertion.Path), want),
			Actual:   fmt.Sprintf("%s = %s", displayPath(assertion.Path), got),
		}
	}

	return nil
}

// lookupPath walks a dotted path through decoded JSON. Numeric segments
// index arrays; all other segments select object keys.
func lookupPath(root any, path string) (any, error) {
	if path == "" {
		return root, nil
	}

	node := root
	walked := ""
	for _, seg := range strings.Split(path, ".") {
		if walked == "" {
			walked = seg
		} else {
			walked += "." + seg
		}

		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, fmt.Errorf("path %q not found", walked)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("path %q: %q is not an array index", walked, seg)
			}
			if i < 0 || i >= len(n) {
				return nil, fmt.Errorf("path %q: index %d out of range (length %d)", walked, i, len(n))
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("path %q: cannot descend into %s", walked, kindOf(node))
		}
	}
	return node, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func displayPath(path string) string {
	if path == "" {
		return "state"
	}
	return path
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored. Values are compared as canonical JSON so
// that 1 and int64(1) match.
func matchArgs(actual, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}

	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

func valuesEqual(actual, expected any) bool {
	a, err := snapshot.Marshal(actual)
	if err != nil {
		return false
	}
	e, err := snapshot.Marshal(expected)
	if err != nil {
		return false
	}
	return bytes.Equal(a, e)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
