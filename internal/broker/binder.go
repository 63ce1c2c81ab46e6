package broker

import (
	"fmt"

	"github.com/sabberworm/wok/internal/descriptor"
	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/pipe"
	"github.com/sabberworm/wok/internal/plugin"
)

// StageSpec describes the pipes a stage wants to join. A side with an empty
// name is left unbound.
type StageSpec struct {
	Input   string
	OnInput pipe.Subscriber

	Output   string
	OnOutput pipe.Provider
}

// Register subscribes OnInput to the input pipe and provides OnOutput as the
// source of the output pipe, then returns a stage bound to both.
//
// The input is subscribed first. If providing the output fails, that
// subscription stays on the input pipe.
func (b *Broker) Register(spec StageSpec) (*plugin.Stage, error) {
	if spec.Input != "" {
		b.Subscribe(spec.Input, spec.OnInput)
	}
	if spec.Output != "" {
		if err := b.Provide(spec.Output, spec.OnOutput, false); err != nil {
			return nil, err
		}
	}
	return plugin.NewStage(b, spec.Input, spec.Output), nil
}

// Init binds every plugin to the matching descendants of root. Plugins are
// visited in the order they were bound and elements in document order.
func (b *Broker) Init(root dom.Element) error {
	for _, name := range b.order {
		factory := b.plugins[name]
		attr := b.config.AttributeName(name)
		elements := root.QueryAttr(attr)
		b.logger.Debug("Scanning for plugin elements.", "plugin", name, "attribute", attr, "count", len(elements))

		for _, el := range elements {
			if err := b.initElement(name, factory, el); err != nil {
				return fmt.Errorf("failed to initialise plugin %q on %s: %w", name, el, err)
			}
		}
	}
	return nil
}

// controlsCell holds a plugin's controls once its factory has returned. The
// pipe adapters registered before the factory runs read through it.
type controlsCell struct {
	name     string
	controls *plugin.Controls
}

func (c *controlsCell) render(values ...any) {
	if c.controls == nil || c.controls.Render == nil {
		return
	}
	c.controls.Render(values...)
}

func (c *controlsCell) request(options ...any) (any, error) {
	if c.controls == nil {
		return nil, fmt.Errorf("plugin %q requested before it was activated: %w", c.name, plugin.ErrPluginContract)
	}
	if c.controls.Request == nil {
		return nil, fmt.Errorf("plugin %q has no request function: %w", c.name, plugin.ErrPluginContract)
	}
	return c.controls.Request(options...)
}

func (b *Broker) initElement(name string, factory plugin.Factory, el dom.Element) error {
	logger := b.logger.With("plugin", name, "element", el.String())

	raw, _ := el.Attr(b.config.AttributeName(name))
	wiring, err := descriptor.Parse(raw)
	if err != nil {
		return err
	}
	logger.Debug("Wiring parsed.", "input", wiring.Input, "output", wiring.Output, "args", len(wiring.Args))

	cell := &controlsCell{name: name}
	spec := StageSpec{Input: wiring.Input, Output: wiring.Output}
	if wiring.HasInput() {
		spec.OnInput = cell.render
	}
	if wiring.HasOutput() {
		spec.OnOutput = cell.request
	}
	stage, err := b.Register(spec)
	if err != nil {
		return err
	}
	logger.Debug("Stage registered.")

	controls, err := factory(stage, el, wiring.Args...)
	if err != nil {
		return fmt.Errorf("plugin factory failed: %w", err)
	}
	cell.controls = controls
	logger.Debug("Plugin factory invoked.")

	if err := plugin.Check(name, wiring, controls); err != nil {
		return err
	}
	logger.Debug("Controls validated.", "capabilities", controls.Capabilities().String())

	if controls.RequestImmediately {
		if _, err := stage.Request(); err != nil {
			return fmt.Errorf("immediate request failed: %w", err)
		}
	}
	if controls.RenderImmediately {
		if err := stage.Render(); err != nil {
			return fmt.Errorf("immediate render failed: %w", err)
		}
	}

	if class, ok := b.config.MarkerClass(name); ok {
		el.AddClass(class)
	}
	logger.Debug("Element activated.")
	return nil
}
