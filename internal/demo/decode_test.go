package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		expected Action
	}{
		{"increment", nil, Increment{}},
		{"fact_loaded", map[string]any{"fact": "x"}, FactLoaded{Fact: "x"}},
		{"add_todo", map[string]any{"title": "milk"}, AddTodo{Title: "milk"}},
		{"add_todo", map[string]any{"title": 42}, AddTodo{Title: "42"}},
		{"remove_todo", map[string]any{"index": 1}, RemoveTodo{Index: 1}},
		{"toggle", map[string]any{"index": "2"}, TodoAtIndex(2, Toggle{})},
		{"rename", map[string]any{"index": 0, "title": "t"}, TodoAtIndex(0, Rename{Title: "t"})},
		{"type", map[string]any{"text": "ab"}, Type{Text: "ab"}},
		{"start", map[string]any{"name": "tea", "ticks": 3}, TimerNamed("tea", Start{Ticks: 3})},
		{"tick", map[string]any{"name": "tea"}, TimerNamed("tea", Tick{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("fly", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode("add_todo", nil)
	assert.ErrorContains(t, err, `missing argument "title"`)

	_, err = Decode("toggle", map[string]any{"index": "one"})
	assert.ErrorContains(t, err, `argument "index"`)

	_, err = Decode("type", map[string]any{"text": []string{"a"}})
	assert.ErrorContains(t, err, "want string")
}

func TestParse(t *testing.T) {
	a, err := Parse("increment")
	require.NoError(t, err)
	assert.Equal(t, Increment{}, a)

	a, err = Parse("start:name=tea,ticks=3")
	require.NoError(t, err)
	assert.Equal(t, TimerNamed("tea", Start{Ticks: 3}), a)

	_, err = Parse("add_todo:title")
	assert.ErrorContains(t, err, "not key=value")
}

func TestActionNames_RoundTripThroughDecode(t *testing.T) {
	for _, name := range ActionNames() {
		_, err := Decode(name, map[string]any{
			"fact": "f", "title": "t", "index": 0, "text": "x", "name": "n", "ticks": 1,
		})
		assert.NoError(t, err, name)
	}
}

func TestActionStrings(t *testing.T) {
	assert.Equal(t, "todo[2] rename(title=\"x\")", TodoAtIndex(2, Rename{Title: "x"}).String())
	assert.Equal(t, "timer[tea] start(ticks=3)", TimerNamed("tea", Start{Ticks: 3}).String())
	assert.Equal(t, `add_todo(title="milk")`, AddTodo{Title: "milk"}.String())
	assert.Equal(t, "increment_later", IncrementLater{}.String())
}
