// Package value provides the "value" plugin, a constant source. Its wiring
// arguments become the data served on its output pipe.
package value

import (
	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "value"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, New)
}

// New builds a value plugin. With no arguments it serves nil, with one it
// serves that argument, and with several it serves them as a []any. Once
// bound it renders immediately so subscribers bound earlier learn of it.
func New(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
	values, err := plugin.GoValues(args)
	if err != nil {
		return nil, err
	}

	var out any
	switch len(values) {
	case 0:
	case 1:
		out = values[0]
	default:
		out = values
	}

	return &plugin.Controls{
		Request: func(options ...any) (any, error) {
			return out, nil
		},
		RenderImmediately: st.HasOutput(),
	}, nil
}
