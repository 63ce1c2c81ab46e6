package testutil

import (
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single plugin factory.
type SimpleModule struct {
	Name    string
	Factory plugin.Factory
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Factory != nil {
		r.Register(m.Name, m.Factory)
	}
}
