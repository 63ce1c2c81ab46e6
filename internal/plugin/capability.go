package plugin

import (
	"fmt"
	"strings"

	"github.com/sabberworm/wok/internal/descriptor"
)

// Capability is a set of things a plugin's controls can do.
type Capability uint8

const (
	CanRender Capability = 1 << iota
	CanRequest
)

// Has reports whether every capability in other is present in c.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CanRender) {
		parts = append(parts, "render")
	}
	if c.Has(CanRequest) {
		parts = append(parts, "request")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Capabilities reports what the controls can do. A nil Controls can do
// nothing.
func (c *Controls) Capabilities() Capability {
	var caps Capability
	if c == nil {
		return caps
	}
	if c.Render != nil || c.RenderImmediately {
		caps |= CanRender
	}
	if c.Request != nil || c.RequestImmediately {
		caps |= CanRequest
	}
	return caps
}

// Required returns the capabilities a wiring demands from its plugin.
func Required(w descriptor.Wiring) Capability {
	var caps Capability
	if w.HasInput() {
		caps |= CanRender
	}
	if w.HasOutput() {
		caps |= CanRequest
	}
	return caps
}

// Check validates the controls returned by the named plugin against the
// wiring declared for its element.
func Check(name string, w descriptor.Wiring, c *Controls) error {
	if c == nil {
		return fmt.Errorf("plugin %q did not return controls: %w", name, ErrPluginContract)
	}

	have := c.Capabilities()
	need := Required(w)
	switch {
	case need.Has(CanRender) && !have.Has(CanRender):
		return fmt.Errorf("plugin %q not meant to be used with input pipes: %w", name, ErrPluginContract)
	case need.Has(CanRequest) && !have.Has(CanRequest):
		return fmt.Errorf("plugin %q not meant to be used with output pipes: %w", name, ErrPluginContract)
	}
	return nil
}
