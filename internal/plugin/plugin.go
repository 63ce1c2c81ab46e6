// Package plugin defines the contract between the broker and the plugins it
// binds to document elements: the factory signature, the controls a factory
// returns, and the stage handle a plugin uses to reach its pipes.
package plugin

import (
	"errors"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrUnknownPlugin is returned when a plugin name cannot be resolved to a
	// factory.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrPluginContract is returned when a factory's controls do not match
	// the pipes declared for the element.
	ErrPluginContract = errors.New("plugin contract violation")

	// ErrStageUnbound is returned by Stage.Request and Stage.Render when the
	// stage has no pipe on that side.
	ErrStageUnbound = errors.New("stage has no pipe on this side")
)

// Factory builds one plugin instance for one element. The stage is the
// plugin's handle on its pipes, el the element carrying the wiring attribute
// and args the literal arguments from the attribute.
type Factory func(st *Stage, el dom.Element, args ...cty.Value) (*Controls, error)

// RenderFunc receives values arriving on a plugin's input pipe.
type RenderFunc func(values ...any)

// RequestFunc answers requests on a plugin's output pipe.
type RequestFunc func(options ...any) (any, error)

// Controls is what a factory returns.
//
// A plugin bound to an input pipe must be able to render; one bound to an
// output pipe must be able to answer requests. Setting RenderImmediately or
// RequestImmediately asks the broker to call Stage.Render or Stage.Request
// once the element is activated, and also counts as the capability for that
// side.
type Controls struct {
	Render  RenderFunc
	Request RequestFunc

	RenderImmediately  bool
	RequestImmediately bool
}
