// File: internal/actions/literal.go
package actions

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// callParser is a minimal recursive-descent parser for a single call
// expression with literal-only keyword arguments:
//
//	ident "(" [ ident "=" literal { "," ident "=" literal } ] ")"
//
// Literals are numbers, quoted strings, bracketed number sequences, and
// booleans. Nested calls, attribute access, and bare names other than the
// boolean spellings are rejected, so a hostile instruction can never smuggle
// anything executable through the argument list.
type callParser struct {
	input string
	pos   int
}

func (p *callParser) errf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *callParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *callParser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *callParser) expect(ch byte) error {
	got, ok := p.peek()
	if !ok {
		return p.errf("expected %q, found end of input", ch)
	}
	if got != ch {
		return p.errf("expected %q, found %q", ch, got)
	}
	p.pos++
	return nil
}

func isIdentByte(ch byte, first bool) bool {
	if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		return true
	}
	return !first && ch >= '0' && ch <= '9'
}

func (p *callParser) ident() (string, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected identifier")
	}
	return p.input[start:p.pos], nil
}

// parseCall consumes the whole input as one call expression and returns the
// callee name plus the keyword arguments.
func (p *callParser) parseCall() (string, map[string]any, error) {
	p.skipSpace()
	name, err := p.ident()
	if err != nil {
		return "", nil, err
	}
	p.skipSpace()
	if err := p.expect('('); err != nil {
		return "", nil, err
	}

	args := make(map[string]any)
	p.skipSpace()
	if ch, ok := p.peek(); ok && ch == ')' {
		p.pos++
	} else {
		for {
			p.skipSpace()
			key, err := p.ident()
			if err != nil {
				return "", nil, err
			}
			p.skipSpace()
			if err := p.expect('='); err != nil {
				return "", nil, err
			}
			p.skipSpace()
			value, err := p.literal()
			if err != nil {
				return "", nil, err
			}
			args[key] = value

			p.skipSpace()
			ch, ok := p.peek()
			if !ok {
				return "", nil, p.errf("unterminated call expression")
			}
			if ch == ',' {
				p.pos++
				continue
			}
			if ch == ')' {
				p.pos++
				break
			}
			return "", nil, p.errf("expected ',' or ')', found %q", ch)
		}
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return "", nil, p.errf("trailing data after call expression")
	}
	return name, args, nil
}

// literal parses exactly one literal value.
func (p *callParser) literal() (any, error) {
	ch, ok := p.peek()
	if !ok {
		return nil, p.errf("expected literal, found end of input")
	}
	switch {
	case ch == '"' || ch == '\'':
		return p.stringLiteral(ch)
	case ch == '[':
		return p.sequenceLiteral()
	case ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9'):
		return p.numberLiteral()
	default:
		// Only the boolean spellings are legal bare names. Anything else
		// (identifiers, nested calls, attribute access) is rejected.
		name, err := p.ident()
		if err != nil {
			return nil, p.errf("expected literal, found %q", ch)
		}
		switch name {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		}
		return nil, p.errf("%q is not a literal", name)
	}
}

func (p *callParser) stringLiteral(quote byte) (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		switch ch {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", p.errf("unterminated escape sequence")
			}
			esc := p.input[p.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				// Covers \", \', \\ and any passthrough escape.
				b.WriteByte(esc)
			}
			p.pos++
		default:
			b.WriteByte(ch)
			p.pos++
		}
	}
	return "", p.errf("unterminated string literal")
}

func (p *callParser) numberLiteral() (float64, error) {
	start := p.pos
	if ch, _ := p.peek(); ch == '-' || ch == '+' {
		p.pos++
	}
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == 'e' || ch == 'E' {
			p.pos++
			continue
		}
		if (ch == '-' || ch == '+') && p.pos > start &&
			(p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	text := p.input[start:p.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, p.errf("invalid number %q", text)
	}
	return f, nil
}

// sequenceLiteral parses an ordered sequence of numbers, the shape point and
// pair arguments arrive in.
func (p *callParser) sequenceLiteral() ([]float64, error) {
	p.pos++ // opening bracket
	var seq []float64
	p.skipSpace()
	if ch, ok := p.peek(); ok && ch == ']' {
		p.pos++
		return seq, nil
	}
	for {
		p.skipSpace()
		n, err := p.numberLiteral()
		if err != nil {
			return nil, err
		}
		seq = append(seq, n)
		p.skipSpace()
		ch, ok := p.peek()
		if !ok {
			return nil, p.errf("unterminated sequence literal")
		}
		if ch == ',' {
			p.pos++
			continue
		}
		if ch == ']' {
			p.pos++
			return seq, nil
		}
		return nil, p.errf("expected ',' or ']' in sequence, found %q", ch)
	}
}
