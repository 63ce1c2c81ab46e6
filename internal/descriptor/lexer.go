package descriptor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
)

// lexer walks an argument list one literal at a time.
type lexer struct {
	src string
	pos int
}

func (l *lexer) done() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte { return l.src[l.pos] }

func (l *lexer) skipSpace() {
	for !l.done() {
		switch l.peek() {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), l.pos, l.src)
}

// literal reads one argument value.
func (l *lexer) literal() (cty.Value, error) {
	if l.done() {
		return cty.NilVal, l.errorf("unexpected end of arguments")
	}

	switch c := l.peek(); {
	case c == '"':
		s, err := l.quoted()
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(s), nil
	case c == '-' || isDigit(c):
		return l.number()
	case c == '{' || c == '[':
		return cty.NilVal, l.errorf("only strings, numbers, booleans and null are allowed")
	default:
		return l.keyword()
	}
}

func (l *lexer) keyword() (cty.Value, error) {
	start := l.pos
	for !l.done() && isLetter(l.peek()) {
		l.pos++
	}
	switch word := l.src[start:l.pos]; word {
	case "true":
		return cty.True, nil
	case "false":
		return cty.False, nil
	case "null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "":
		return cty.NilVal, l.errorf("unexpected character %q", l.peek())
	default:
		l.pos = start
		return cty.NilVal, l.errorf("unknown literal %q", word)
	}
}

// number reads a JSON number: -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *lexer) number() (cty.Value, error) {
	start := l.pos
	if l.peek() == '-' {
		l.pos++
	}

	switch {
	case l.done() || !isDigit(l.peek()):
		return cty.NilVal, l.errorf("expected digit")
	case l.peek() == '0':
		l.pos++
	default:
		l.digits()
	}

	if !l.done() && l.peek() == '.' {
		l.pos++
		if l.done() || !isDigit(l.peek()) {
			return cty.NilVal, l.errorf("expected digit after decimal point")
		}
		l.digits()
	}

	if !l.done() && (l.peek() == 'e' || l.peek() == 'E') {
		l.pos++
		if !l.done() && (l.peek() == '+' || l.peek() == '-') {
			l.pos++
		}
		if l.done() || !isDigit(l.peek()) {
			return cty.NilVal, l.errorf("expected digit in exponent")
		}
		l.digits()
	}

	v, err := cty.ParseNumberVal(l.src[start:l.pos])
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return v, nil
}

func (l *lexer) digits() {
	for !l.done() && isDigit(l.peek()) {
		l.pos++
	}
}

// quoted reads a double-quoted string with JSON escapes.
func (l *lexer) quoted() (string, error) {
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.done() {
			return "", l.errorf("unterminated string")
		}
		c := l.peek()
		switch {
		case c == '"':
			l.pos++
			return sb.String(), nil
		case c == '\\':
			l.pos++
			if err := l.escape(&sb); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", l.errorf("control character in string")
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			sb.WriteRune(r)
			l.pos += size
		}
	}
}

func (l *lexer) escape(sb *strings.Builder) error {
	if l.done() {
		return l.errorf("unterminated escape")
	}
	c := l.peek()
	l.pos++
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := l.hex4()
		if err != nil {
			return err
		}
		// A high surrogate only pairs with a following low surrogate. Any
		// other escape is left to be read on its own; the unpaired half is
		// written as U+FFFD.
		if utf16.IsSurrogate(r) && r < 0xdc00 && strings.HasPrefix(l.src[l.pos:], `\u`) {
			mark := l.pos
			l.pos += 2
			r2, err := l.hex4()
			if err != nil {
				return err
			}
			if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
				r = pair
			} else {
				l.pos = mark
			}
		}
		sb.WriteRune(r)
	default:
		l.pos--
		return l.errorf("invalid escape %q", c)
	}
	return nil
}

func (l *lexer) hex4() (rune, error) {
	if l.pos+4 > len(l.src) {
		return 0, l.errorf("short unicode escape")
	}
	n, err := strconv.ParseUint(l.src[l.pos:l.pos+4], 16, 16)
	if err != nil {
		return 0, l.errorf("invalid unicode escape %q", l.src[l.pos:l.pos+4])
	}
	l.pos += 4
	return rune(n), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// formatLiteral is the inverse of literal for the value kinds Parse produces.
func formatLiteral(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case v.Type() == cty.String:
		return quote(v.AsString())
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case v.Type() == cty.Bool:
		return strconv.FormatBool(v.True())
	default:
		return v.GoString()
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
