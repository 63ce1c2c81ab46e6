// Package relay provides the "relay" plugin, which connects an input pipe to
// an output pipe and remembers the last values that passed through.
package relay

import (
	"log/slog"
	"sync"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "relay"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, New)
}

type relay struct {
	st *plugin.Stage
	el dom.Element

	mu   sync.Mutex
	last []any
}

// New builds a relay plugin. Values rendered to its input are kept and
// forwarded to its output. A render without values pulls from the input
// first. Requests on the output return the kept values.
func New(st *plugin.Stage, el dom.Element, _ ...cty.Value) (*plugin.Controls, error) {
	r := &relay{st: st, el: el}
	return &plugin.Controls{Render: r.render, Request: r.request}, nil
}

func (r *relay) render(values ...any) {
	if len(values) == 0 {
		v, err := r.st.Request()
		if err != nil {
			slog.Warn("Relay could not pull its input.", "element", r.el.String(), "pipe", r.st.InputName(), "error", err)
			return
		}
		values = []any{v}
	}

	r.mu.Lock()
	r.last = append([]any(nil), values...)
	r.mu.Unlock()

	if !r.st.HasOutput() {
		return
	}
	if err := r.st.Render(values...); err != nil {
		slog.Warn("Relay could not forward values.", "element", r.el.String(), "error", err)
	}
}

func (r *relay) request(options ...any) (any, error) {
	r.mu.Lock()
	last := append([]any(nil), r.last...)
	r.mu.Unlock()

	switch len(last) {
	case 0:
		// Nothing has passed through yet, so ask upstream.
		if r.st.HasInput() {
			return r.st.Request(options...)
		}
		return nil, nil
	case 1:
		return last[0], nil
	default:
		return last, nil
	}
}
