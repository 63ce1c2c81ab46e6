package app

import (
	"github.com/sabberworm/wok/internal/registry"
	"github.com/sabberworm/wok/modules/env_vars"
	"github.com/sabberworm/wok/modules/http_request"
	"github.com/sabberworm/wok/modules/print"
	"github.com/sabberworm/wok/modules/relay"
	"github.com/sabberworm/wok/modules/socketio"
	"github.com/sabberworm/wok/modules/value"
)

// coreModules returns the definitive list of all plugin modules that are
// compiled into the wok binary. Each app gets its own instances because some
// modules hold connections until the app closes them.
func coreModules() []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&http_request.Module{},
		&print.Module{},
		&relay.Module{},
		&socketio.Module{},
		&value.Module{},
	}
}
