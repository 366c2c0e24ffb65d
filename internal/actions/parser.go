// File: internal/actions/parser.go
package actions

import (
	"fmt"
	"strings"
)

// ParseError reports an instruction that does not match the recognized
// grammar. It carries the offending input so the caller can feed it back to
// the model or an operator.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse instruction %q: %s", e.Input, e.Reason)
}

const (
	typePrefix     = `do(action="Type"`
	typeNamePrefix = `do(action="Type_Name"`
	textMarker     = `text=`
	messageMarker  = `message=`
)

// Parse converts a raw model instruction into a structured command. Only two
// top-level shapes are recognized: do(action=..., ...) and
// finish(message=...). Everything else fails with a *ParseError.
func Parse(raw string) (Command, error) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, typePrefix), strings.HasPrefix(trimmed, typeNamePrefix):
		// The text payload may contain quotes, commas, and parentheses
		// that defeat generic argument parsing, so it is cut out by the
		// position of the text= marker instead of evaluated.
		return parseTypeCall(trimmed)
	case strings.HasPrefix(trimmed, "do"):
		return parseDoCall(trimmed)
	case strings.HasPrefix(trimmed, "finish"):
		return parseFinishCall(trimmed)
	default:
		return Command{}, &ParseError{Input: trimmed, Reason: "instruction must start with do or finish"}
	}
}

// parseTypeCall extracts the literal text payload of a Type/Type_Name call
// by slice trimming: everything after text= minus the opening quote and the
// trailing quote-and-paren.
func parseTypeCall(in string) (Command, error) {
	name := "Type"
	if strings.HasPrefix(in, typeNamePrefix) {
		name = "Type_Name"
	}

	idx := strings.Index(in, textMarker)
	if idx < 0 {
		return Command{}, &ParseError{Input: in, Reason: "missing text= argument"}
	}
	payload := in[idx+len(textMarker):]
	if len(payload) < 3 {
		return Command{}, &ParseError{Input: in, Reason: "truncated text= argument"}
	}
	text := payload[1 : len(payload)-2]

	return Command{
		Kind:   KindDo,
		Action: ActionFromName(name),
		Name:   name,
		Args:   map[string]any{"text": text},
	}, nil
}

// parseDoCall parses a generic do(...) call as a literal-only expression.
func parseDoCall(in string) (Command, error) {
	p := &callParser{input: in}
	callee, args, err := p.parseCall()
	if err != nil {
		return Command{}, &ParseError{Input: in, Reason: err.Error()}
	}
	if callee != "do" {
		return Command{}, &ParseError{Input: in, Reason: fmt.Sprintf("expected do(...), found %s(...)", callee)}
	}

	name, ok := args["action"].(string)
	if !ok {
		return Command{}, &ParseError{Input: in, Reason: "do() requires a string action= argument"}
	}
	delete(args, "action")

	return Command{
		Kind:   KindDo,
		Action: ActionFromName(name),
		Name:   name,
		Args:   args,
	}, nil
}

// parseFinishCall extracts the completion message the same way the Type case
// extracts text: by marker position and slice trimming.
func parseFinishCall(in string) (Command, error) {
	idx := strings.Index(in, messageMarker)
	if idx < 0 {
		return Command{}, &ParseError{Input: in, Reason: "missing message= argument"}
	}
	payload := in[idx+len(messageMarker):]
	if len(payload) < 3 {
		return Command{}, &ParseError{Input: in, Reason: "truncated message= argument"}
	}
	message := payload[1 : len(payload)-2]

	return Command{
		Kind: KindFinish,
		Args: map[string]any{"message": message},
	}, nil
}
