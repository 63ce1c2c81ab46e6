package config

import (
	"fmt"

	"github.com/sabberworm/wok/internal/broker"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of a wok configuration.
type Model struct {
	// Options are the broker options keyed by name, e.g. plugin_prefix.
	Options map[string]cty.Value
	// Debug turns on pipe dispatch tracing.
	Debug bool
	// Plugins lists the plugins to bind, in declaration order.
	Plugins []*PluginBinding
}

// PluginBinding binds a plugin name on the broker.
type PluginBinding struct {
	Name string
	// Use names the plugin Name is an alias of. Empty means Name itself is
	// looked up in the shared registry.
	Use string
}

// New returns an empty model.
func New() *Model {
	return &Model{Options: make(map[string]cty.Value)}
}

// BrokerConfig turns the options into a broker configuration.
func (m *Model) BrokerConfig() (broker.Config, error) {
	cfg, err := broker.ConfigFromValues(m.Options)
	if err != nil {
		return broker.Config{}, fmt.Errorf("invalid broker options: %w", err)
	}
	return cfg, nil
}

// Binding returns the binding for name, if any.
func (m *Model) Binding(name string) (*PluginBinding, bool) {
	for _, p := range m.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Merge folds other into m. Options and Debug from other win; bindings with
// a name already present are replaced in place.
func (m *Model) Merge(other *Model) {
	for k, v := range other.Options {
		m.Options[k] = v
	}
	if other.Debug {
		m.Debug = true
	}
	for _, p := range other.Plugins {
		if existing, ok := m.Binding(p.Name); ok {
			existing.Use = p.Use
			continue
		}
		m.Plugins = append(m.Plugins, &PluginBinding{Name: p.Name, Use: p.Use})
	}
}
