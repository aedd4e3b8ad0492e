package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/unidir/internal/demo"
)

//go:embed schema.cue
var schemaCUE string

// Scenario is a scripted run against one demo application.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// App is the demo application to run (see demo.Names).
	App string `yaml:"app"`

	// Timeout bounds how long a receive step waits for an asynchronous
	// effect, as a Go duration string. Default: DefaultTimeout.
	Timeout string `yaml:"timeout,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scripted step. Exactly one of Send, Receive and Advance is set.
type Step struct {
	// Send names an action to send.
	Send string `yaml:"send,omitempty"`

	// Receive names the action the next effect output must equal.
	Receive string `yaml:"receive,omitempty"`

	// Args are the action's arguments for Send and Receive.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect is a JSON merge patch describing how the state changes.
	// Nil means the state must not change.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Advance moves virtual time forward by a Go duration string.
	Advance string `yaml:"advance,omitempty"`
}

// Kind returns "send", "receive" or "advance".
func (s Step) Kind() string {
	switch {
	case s.Send != "":
		return StepSend
	case s.Receive != "":
		return StepReceive
	default:
		return StepAdvance
	}
}

// Step kinds.
const (
	StepSend    = "send"
	StepReceive = "receive"
	StepAdvance = "advance"
)

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the action name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected action arguments (trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]any `yaml:"args,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Path is a dotted path into the final state, e.g. "todos.0.title"
	// (final_state). The empty path is the whole state.
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path (final_state).
	Equals any `yaml:"equals,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario schema-checks and parses scenario YAML.
// Returns an error if the document is malformed, violates the schema,
// contains unknown fields (typos), or references an unknown app or action.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ValidateSchema checks scenario YAML against the embedded CUE schema.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return &SchemaError{Message: "empty document"}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	value := def.Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Message: err.Error(), Err: err}
	}
	return nil
}

// SchemaError is returned when a scenario violates the CUE schema.
type SchemaError struct {
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	return "scenario schema violation: " + e.Message
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// validateScenario checks what the schema cannot: that the app and actions
// exist and that durations parse.
func validateScenario(s *Scenario) error {
	if _, ok := demo.Lookup(s.App); !ok {
		return fmt.Errorf("unknown app %q (available: %v)", s.App, demo.Names())
	}

	if s.Timeout != "" {
		if _, err := time.ParseDuration(s.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	for _, v := range []string{step.Send, step.Receive, step.Advance} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of send, receive, advance is required", index)
	}

	switch step.Kind() {
	case StepAdvance:
		if _, err := time.ParseDuration(step.Advance); err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
	default:
		name := step.Send + step.Receive
		if _, err := demo.Decode(name, step.Args); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
