// Package env_vars provides the "env" plugin, which serves process
// environment variables on its output pipe.
package env_vars

import (
	"fmt"
	"os"
	"strings"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "env"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, New)
}

// New builds an env plugin. With a variable name as first argument, requests
// return that variable's value (nil when unset). Without one they return a
// map of the whole environment. A string request option overrides the name.
func New(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
	name, err := plugin.StringArg(args, 0, "")
	if err != nil {
		return nil, err
	}

	request := func(options ...any) (any, error) {
		key := name
		if len(options) > 0 {
			s, ok := options[0].(string)
			if !ok {
				return nil, fmt.Errorf("env option must be a variable name, got %T", options[0])
			}
			key = s
		}
		if key == "" {
			return Environ(), nil
		}
		if v, ok := os.LookupEnv(key); ok {
			return v, nil
		}
		return nil, nil
	}
	return &plugin.Controls{Request: request}, nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			env[pair[0]] = pair[1]
		}
	}
	return env
}
