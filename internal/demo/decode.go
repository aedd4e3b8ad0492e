package demo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned by Decode for names it does not recognize.
var ErrUnknownAction = errors.New("unknown action")

// decoders maps action names to constructors. Args come from scenario YAML
// or the command line.
var decoders = map[string]func(args map[string]any) (Action, error){
	"increment":        func(map[string]any) (Action, error) { return Increment{}, nil },
	"decrement":        func(map[string]any) (Action, error) { return Decrement{}, nil },
	"increment_later":  func(map[string]any) (Action, error) { return IncrementLater{}, nil },
	"cancel_increment": func(map[string]any) (Action, error) { return CancelIncrement{}, nil },
	"reset":            func(map[string]any) (Action, error) { return Reset{}, nil },
	"request_fact":     func(map[string]any) (Action, error) { return RequestFact{}, nil },
	"fact_loaded": func(args map[string]any) (Action, error) {
		fact, err := argString(args, "fact")
		return FactLoaded{Fact: fact}, err
	},
	"add_todo": func(args map[string]any) (Action, error) {
		title, err := argString(args, "title")
		return AddTodo{Title: title}, err
	},
	"remove_todo": func(args map[string]any) (Action, error) {
		index, err := argInt(args, "index")
		return RemoveTodo{Index: index}, err
	},
	"toggle": func(args map[string]any) (Action, error) {
		index, err := argInt(args, "index")
		return TodoAtIndex(index, Toggle{}), err
	},
	"rename": func(args map[string]any) (Action, error) {
		index, err := argInt(args, "index")
		if err != nil {
			return nil, err
		}
		title, err := argString(args, "title")
		return TodoAtIndex(index, Rename{Title: title}), err
	},
	"open_editor":  func(map[string]any) (Action, error) { return OpenEditor{}, nil },
	"close_editor": func(map[string]any) (Action, error) { return CloseEditor{}, nil },
	"type": func(args map[string]any) (Action, error) {
		text, err := argString(args, "text")
		return Type{Text: text}, err
	},
	"submit": func(map[string]any) (Action, error) { return Submit{}, nil },
	"add_timer": func(args map[string]any) (Action, error) {
		name, err := argString(args, "name")
		return AddTimer{Name: name}, err
	},
	"remove_timer": func(args map[string]any) (Action, error) {
		name, err := argString(args, "name")
		return RemoveTimer{Name: name}, err
	},
	"start": func(args map[string]any) (Action, error) {
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		ticks, err := argInt(args, "ticks")
		return TimerNamed(name, Start{Ticks: ticks}), err
	},
	"stop": func(args map[string]any) (Action, error) {
		name, err := argString(args, "name")
		return TimerNamed(name, Stop{}), err
	},
	"tick": func(args map[string]any) (Action, error) {
		name, err := argString(args, "name")
		return TimerNamed(name, Tick{}), err
	},
}

// Decode builds the action called name from args.
func Decode(name string, args map[string]any) (Action, error) {
	decode, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	action, err := decode(args)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return action, nil
}

// ActionNames returns every name Decode accepts, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse decodes the command-line form of an action: a name optionally
// followed by ":" and comma-separated key=value arguments, for example
// "add_todo:title=milk" or "start:name=tea,ticks=3".
func Parse(s string) (Action, error) {
	name, rest, hasArgs := strings.Cut(s, ":")
	args := map[string]any{}
	if hasArgs && rest != "" {
		for _, pair := range strings.Split(rest, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("parse %q: argument %q is not key=value", s, pair)
			}
			args[strings.TrimSpace(k)] = v
		}
	}
	return Decode(strings.TrimSpace(name), args)
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case int, int64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("argument %q: want string, got %T", key, v)
	}
}

func argInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("argument %q: want integer, got %T", key, v)
	}
}
