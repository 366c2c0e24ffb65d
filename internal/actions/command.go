// File: internal/actions/command.go

// Package actions is the interpretation and execution core: it parses the
// textual instructions a vision model emits into structured commands and
// dispatches them against a device control surface under safety gates.
package actions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the two top-level instruction shapes.
type Kind int

const (
	// KindUnknown is the zero value; the dispatcher treats it as a fatal
	// malformed instruction.
	KindUnknown Kind = iota
	KindDo
	KindFinish
)

// Action is the closed enumeration of device actions a `do` instruction may
// name. Adding a value here forces a handler decision in the dispatcher's
// switch.
type Action int

const (
	ActionUnknown Action = iota
	ActionLaunch
	ActionTap
	ActionTypeText
	ActionTypeName
	ActionSwipe
	ActionBack
	ActionHome
	ActionDoubleTap
	ActionLongPress
	ActionWait
	ActionTakeOver
	ActionNote
	ActionCallAPI
	ActionInteract
)

// actionNames maps the wire spelling to the enum. Unknown spellings stay
// representable on Command.Name so the dispatcher can report them.
var actionNames = map[string]Action{
	"Launch":     ActionLaunch,
	"Tap":        ActionTap,
	"Type":       ActionTypeText,
	"Type_Name":  ActionTypeName,
	"Swipe":      ActionSwipe,
	"Back":       ActionBack,
	"Home":       ActionHome,
	"Double Tap": ActionDoubleTap,
	"Long Press": ActionLongPress,
	"Wait":       ActionWait,
	"Take_over":  ActionTakeOver,
	"Note":       ActionNote,
	"Call_API":   ActionCallAPI,
	"Interact":   ActionInteract,
}

// ActionFromName resolves a wire spelling, returning ActionUnknown for
// anything outside the enumeration.
func ActionFromName(name string) Action {
	return actionNames[name]
}

// Command is the validated, typed representation of a parsed instruction.
// Args hold literal keyword values only: string, float64, bool, or
// []float64 (point/pair arguments).
type Command struct {
	Kind   Kind
	Action Action
	// Name is the action name exactly as the model spelled it.
	Name string
	Args map[string]any
}

// Text returns the named argument as a string.
func (c Command) Text(key string) (string, bool) {
	v, ok := c.Args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Point returns the named argument as a logical point. Sequences with fewer
// than two elements do not qualify.
func (c Command) Point(key string) (LogicalPoint, bool) {
	v, ok := c.Args[key]
	if !ok {
		return LogicalPoint{}, false
	}
	seq, ok := v.([]float64)
	if !ok || len(seq) < 2 {
		return LogicalPoint{}, false
	}
	return LogicalPoint{X: seq[0], Y: seq[1]}, true
}

// Bool returns the named argument as a boolean.
func (c Command) Bool(key string) (bool, bool) {
	v, ok := c.Args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether the argument is present at all.
func (c Command) Has(key string) bool {
	_, ok := c.Args[key]
	return ok
}

// String re-renders the command in its wire form. For commands whose
// argument values survive the trip (no exotic escaping in strings), parsing
// the rendered form yields an equal command.
func (c Command) String() string {
	switch c.Kind {
	case KindFinish:
		msg, _ := c.Text("message")
		return fmt.Sprintf("finish(message=%s)", renderLiteral(msg))
	case KindDo:
		var b strings.Builder
		b.WriteString("do(action=")
		b.WriteString(renderLiteral(c.Name))
		// Deterministic order: sorted keys, `text` rendered last so the
		// Type special-case extraction sees the full payload.
		keys := make([]string, 0, len(c.Args))
		for k := range c.Args {
			if k != "text" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if c.Has("text") {
			keys = append(keys, "text")
		}
		for _, k := range keys {
			b.WriteString(", ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(renderLiteral(c.Args[k]))
		}
		b.WriteString(")")
		return b.String()
	default:
		return "<invalid command>"
	}
}

func renderLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []float64:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}
