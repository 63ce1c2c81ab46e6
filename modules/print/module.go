// Package print provides the "print" plugin, which shows the values arriving
// on its input pipe as the text of its element.
package print

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, New)
}

// New builds a print plugin. The optional first argument is the separator
// placed between values (default ", ").
//
// A render without values is a change notification: the plugin then pulls
// the current value from its input pipe.
func New(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
	sep, err := plugin.StringArg(args, 0, ", ")
	if err != nil {
		return nil, err
	}

	render := func(values ...any) {
		if len(values) == 0 {
			v, err := st.Request()
			if err != nil {
				slog.Warn("Print could not pull its input.", "element", el.String(), "pipe", st.InputName(), "error", err)
				return
			}
			values = []any{v}
		}
		text := Format(values, sep)
		slog.Debug("Printing values.", "element", el.String(), "pipe", st.InputName(), "text", text)
		el.SetText(text)
	}
	return &plugin.Controls{Render: render}, nil
}

// Format joins values with sep. Nil values are shown as "(null)".
func Format(values []any, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			parts[i] = "(null)"
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
