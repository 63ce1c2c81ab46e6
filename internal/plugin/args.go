package plugin

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// GoValue converts a wiring argument into a plain Go value: string, int64
// for integral numbers, float64 for other numbers, bool, or nil for null.
func GoValue(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("argument is not known")
	}

	switch v.Type() {
	case cty.String:
		var s string
		err := gocty.FromCtyValue(v, &s)
		return s, err
	case cty.Bool:
		var b bool
		err := gocty.FromCtyValue(v, &b)
		return b, err
	case cty.Number:
		if v.AsBigFloat().IsInt() {
			var i int64
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		err := gocty.FromCtyValue(v, &f)
		return f, err
	default:
		return nil, fmt.Errorf("unsupported argument type %s", v.Type().FriendlyName())
	}
}

// GoValues converts every argument with GoValue.
func GoValues(args []cty.Value) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, err := GoValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// StringArg returns argument i as a string, or def when it is missing or
// null. Non-string arguments are an error.
func StringArg(args []cty.Value, i int, def string) (string, error) {
	if i >= len(args) || args[i].IsNull() {
		return def, nil
	}
	if args[i].Type() != cty.String {
		return "", fmt.Errorf("argument %d must be a string, got %s", i+1, args[i].Type().FriendlyName())
	}
	return args[i].AsString(), nil
}
