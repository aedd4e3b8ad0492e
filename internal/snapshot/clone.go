package snapshot

import (
	"encoding/json"
	"fmt"
)

// Cloner is implemented by state types that know how to deep-copy
// themselves.
type Cloner[S any] interface {
	Clone() S
}

// Clone returns a deep copy of v.
//
// If S implements Cloner[S], its Clone method is used. Otherwise v is
// copied through a JSON round trip, so only exported, JSON-encodable fields
// survive. State types with unexported fields should implement Cloner.
func Clone[S any](v S) (S, error) {
	if c, ok := any(v).(Cloner[S]); ok {
		return c.Clone(), nil
	}

	var out S
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("snapshot: clone %T: %w", v, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("snapshot: clone %T: %w", v, err)
	}
	return out, nil
}

// Patch applies a JSON merge patch (RFC 7396) to a copy of base.
//
// Objects in patch are merged recursively, a null value deletes a key, and
// anything else replaces the target. Scenario files use it to describe the
// expected state after a step as a change to the previous one.
func Patch[S any](base S, patch map[string]any) (S, error) {
	var out S

	raw, err := json.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("snapshot: patch %T: %w", base, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("snapshot: patch %T: %w", base, err)
	}

	merged := mergePatch(doc, normalizePatch(patch))

	raw, err = json.Marshal(merged)
	if err != nil {
		return out, fmt.Errorf("snapshot: patch %T: %w", base, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("snapshot: patch does not fit %T: %w", base, err)
	}
	return out, nil
}

func mergePatch(target any, patch any) any {
	p, ok := patch.(map[string]any)
	if !ok {
		return patch
	}
	t, ok := target.(map[string]any)
	if !ok {
		t = map[string]any{}
	}
	for k, v := range p {
		if v == nil {
			delete(t, k)
			continue
		}
		t[k] = mergePatch(t[k], v)
	}
	return t
}

// normalizePatch converts the map[any]any values some YAML decoders produce
// into map[string]any so they merge as objects.
func normalizePatch(v map[string]any) map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = normalizeValue(val)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizePatch(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
