package broker

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const (
	// DefaultPluginPrefix is placed between "data-" and the plugin name to
	// form the wiring attribute.
	DefaultPluginPrefix = "wok-"
	// DefaultPluginClass is prepended to the plugin name to form the marker
	// class of activated elements.
	DefaultPluginClass = "wok-"
)

// Option keys understood by ConfigFromValues.
const (
	KeyPluginPrefix = "plugin_prefix"
	KeyPluginClass  = "plugin_class"
)

// Config controls how a broker finds and marks elements.
type Config struct {
	PluginPrefix string
	// PluginClass is the marker class prefix. Nil disables marking.
	PluginClass *string
	// Extra holds options the broker does not use itself. They are kept so
	// plugins and tools can read them.
	Extra map[string]cty.Value
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	class := DefaultPluginClass
	return Config{
		PluginPrefix: DefaultPluginPrefix,
		PluginClass:  &class,
		Extra:        map[string]cty.Value{},
	}
}

// ConfigFromValues merges values over DefaultConfig. A null plugin_class
// disables marker classes; keys other than plugin_prefix and plugin_class are
// kept in Extra.
func ConfigFromValues(values map[string]cty.Value) (Config, error) {
	cfg := DefaultConfig()
	for key, val := range values {
		switch key {
		case KeyPluginPrefix:
			s, err := asString(key, val)
			if err != nil {
				return Config{}, err
			}
			if s == nil {
				return Config{}, fmt.Errorf("option %q cannot be null", key)
			}
			cfg.PluginPrefix = *s
		case KeyPluginClass:
			s, err := asString(key, val)
			if err != nil {
				return Config{}, err
			}
			cfg.PluginClass = s
		default:
			cfg.Extra[key] = val
		}
	}
	return cfg, nil
}

func asString(key string, val cty.Value) (*string, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("option %q must be a known value", key)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return nil, fmt.Errorf("option %q must be a string: %w", key, err)
	}
	s := str.AsString()
	return &s, nil
}

// AttributeName returns the wiring attribute for the named plugin. HTML
// attribute names are case-insensitive and the parser lowercases them, so
// the result is lowercased too.
func (c Config) AttributeName(plugin string) string {
	return strings.ToLower("data-" + c.PluginPrefix + plugin)
}

// MarkerClass returns the class added to elements activated by the named
// plugin, and false when marking is disabled.
func (c Config) MarkerClass(plugin string) (string, bool) {
	if c.PluginClass == nil {
		return "", false
	}
	return *c.PluginClass + plugin, true
}

// Values is the inverse of ConfigFromValues.
func (c Config) Values() map[string]cty.Value {
	out := make(map[string]cty.Value, len(c.Extra)+2)
	for k, v := range c.Extra {
		out[k] = v
	}
	out[KeyPluginPrefix] = cty.StringVal(c.PluginPrefix)
	if c.PluginClass == nil {
		out[KeyPluginClass] = cty.NullVal(cty.String)
	} else {
		out[KeyPluginClass] = cty.StringVal(*c.PluginClass)
	}
	return out
}
