package broker

import (
	"fmt"
	"log/slog"

	"github.com/sabberworm/wok/internal/pipe"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Broker routes values between plugins and binds plugins to elements.
// Its pipe primitives (Provide, Subscribe, Render, Request) come from the
// embedded pipe table.
type Broker struct {
	*pipe.Table

	config  Config
	shared  *registry.Registry
	logger  *slog.Logger
	plugins map[string]plugin.Factory
	order   []string
}

// Option customises a Broker at construction.
type Option func(*options)

type options struct {
	shared *registry.Registry
	logger *slog.Logger
	debug  bool
}

// WithRegistry sets the shared registry consulted by Use.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) { o.shared = r }
}

// WithLogger sets the logger for binding and dispatch tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDebug turns dispatch tracing on or off.
func WithDebug(on bool) Option {
	return func(o *options) { o.debug = on }
}

// New creates a broker with the given configuration.
func New(cfg Config, opts ...Option) *Broker {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if cfg.Extra == nil {
		cfg.Extra = map[string]cty.Value{}
	}

	b := &Broker{
		Table:   pipe.New(o.logger),
		config:  cfg,
		shared:  o.shared,
		logger:  o.logger,
		plugins: make(map[string]plugin.Factory),
	}
	b.SetDebug(o.debug)
	return b
}

// Config returns the broker's configuration.
func (b *Broker) Config() Config {
	return b.config
}

// Plugins returns the names of the bound plugins in the order they were
// first bound.
func (b *Broker) Plugins() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Use binds name to the factory of the same name in the shared registry.
func (b *Broker) Use(name string) error {
	if b.shared == nil {
		return fmt.Errorf("cannot use plugin %q without a shared registry: %w", name, plugin.ErrUnknownPlugin)
	}
	f, ok := b.shared.Lookup(name)
	if !ok || f == nil {
		return fmt.Errorf("plugin %q is not registered: %w", name, plugin.ErrUnknownPlugin)
	}
	b.bind(name, f)
	return nil
}

// UseFactory binds name to factory on this broker only.
func (b *Broker) UseFactory(name string, factory plugin.Factory) error {
	if factory == nil {
		return fmt.Errorf("plugin %q has no factory: %w", name, plugin.ErrUnknownPlugin)
	}
	b.bind(name, factory)
	return nil
}

// UseAlias binds name to the factory already bound to target on this
// broker.
func (b *Broker) UseAlias(name, target string) error {
	f, ok := b.plugins[target]
	if !ok {
		return fmt.Errorf("plugin %q aliases unbound plugin %q: %w", name, target, plugin.ErrUnknownPlugin)
	}
	b.bind(name, f)
	return nil
}

func (b *Broker) bind(name string, f plugin.Factory) {
	if _, exists := b.plugins[name]; !exists {
		b.order = append(b.order, name)
	}
	b.plugins[name] = f
	b.logger.Debug("Plugin bound.", "plugin", name)
}
