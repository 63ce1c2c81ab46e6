package descriptor

import (
	"errors"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ErrSyntax is wrapped by every error returned for a malformed argument list.
var ErrSyntax = errors.New("invalid wiring arguments")

// Wiring is the parsed form of a wiring attribute.
type Wiring struct {
	Input  string // empty when the plugin has no input pipe
	Output string // empty when the plugin has no output pipe
	Args   []cty.Value
}

// HasInput reports whether an input pipe was declared.
func (w Wiring) HasInput() bool { return w.Input != "" }

// HasOutput reports whether an output pipe was declared.
func (w Wiring) HasOutput() bool { return w.Output != "" }

// String renders the wiring back into attribute form.
func (w Wiring) String() string {
	var sb strings.Builder
	sb.WriteString(w.Input)
	sb.WriteByte('/')
	sb.WriteString(w.Output)
	if len(w.Args) > 0 {
		sb.WriteByte('/')
		for i, arg := range w.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatLiteral(arg))
		}
	}
	return sb.String()
}

// Parse reads a wiring attribute value. A missing attribute value should be
// passed as "", which yields a wiring with no pipes and no arguments.
func Parse(raw string) (Wiring, error) {
	tokens := strings.Split(strings.TrimSpace(raw), "/")

	var w Wiring
	w.Input = tokens[0]
	if len(tokens) > 1 {
		w.Output = tokens[1]
	}
	if len(tokens) > 2 {
		args, err := ParseArgs(strings.Join(tokens[2:], "/"))
		if err != nil {
			return Wiring{}, err
		}
		w.Args = args
	}
	return w, nil
}

// ParseArgs reads a comma-separated list of literals. An empty or blank list
// yields no arguments.
func ParseArgs(src string) ([]cty.Value, error) {
	l := &lexer{src: src}
	l.skipSpace()
	if l.done() {
		return nil, nil
	}

	var args []cty.Value
	for {
		l.skipSpace()
		v, err := l.literal()
		if err != nil {
			return nil, err
		}
		args = append(args, v)

		l.skipSpace()
		if l.done() {
			return args, nil
		}
		if l.peek() != ',' {
			return nil, l.errorf("expected ',' after argument %d", len(args))
		}
		l.pos++
	}
}
