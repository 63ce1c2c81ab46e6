package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sabberworm/wok/internal/broker"
	"github.com/sabberworm/wok/internal/config"
	"github.com/sabberworm/wok/internal/ctxlog"
	"github.com/sabberworm/wok/internal/dom"
)

// Run binds the plugins to the configured document and writes the result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "document", a.config.DocumentPath)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	if a.config.PrintConfig {
		return a.printConfig()
	}

	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	defer a.closeModules(ctx)

	b, err := a.NewBroker()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.Init(doc.Root()); err != nil {
		return fmt.Errorf("failed to bind document: %w", err)
	}
	logger.Info("Document bound.", "plugins", len(b.Plugins()), "pipes", len(b.Names()))

	if a.config.Summary {
		return a.writeSummary(b)
	}
	if err := doc.Render(a.outW); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	logger.Debug("App.Run method finished.")
	return nil
}

// closeModules releases what modules opened while binding, such as network
// connections.
func (a *App) closeModules(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, m := range a.modules {
		c, ok := m.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close module.", "module", fmt.Sprintf("%T", m), "error", err)
		}
	}
}

// NewBroker builds a broker from the loaded configuration. Plugins declared
// in the configuration are bound first, in declaration order, followed by
// every other registered plugin in name order.
func (a *App) NewBroker() (*broker.Broker, error) {
	cfg, err := a.model.BrokerConfig()
	if err != nil {
		return nil, err
	}

	b := broker.New(cfg,
		broker.WithRegistry(a.registry),
		broker.WithLogger(a.logger),
		broker.WithDebug(a.model.Debug),
	)
	for _, p := range a.model.Plugins {
		if err := a.bindPlugin(b, p); err != nil {
			return nil, err
		}
	}
	bound := make(map[string]bool)
	for _, name := range b.Plugins() {
		bound[name] = true
	}
	for _, name := range a.registry.Names() {
		if bound[name] {
			continue
		}
		if err := b.Use(name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// bindPlugin binds a configured plugin. An alias resolves against the
// registry first and then against plugins already bound on b.
func (a *App) bindPlugin(b *broker.Broker, p *config.PluginBinding) error {
	if p.Use == "" || p.Use == p.Name {
		return b.Use(p.Name)
	}
	if f, ok := a.registry.Lookup(p.Use); ok {
		return b.UseFactory(p.Name, f)
	}
	return b.UseAlias(p.Name, p.Use)
}

func (a *App) loadDocument() (*dom.Document, error) {
	f, err := os.Open(a.config.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", a.config.DocumentPath, err)
	}
	return doc, nil
}

func (a *App) printConfig() error {
	enc, ok := a.loader.(config.Encoder)
	if !ok {
		return errors.New("configuration loader cannot encode its model")
	}
	out, err := enc.Encode(a.model)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = a.outW.Write(out)
	return err
}

func (a *App) writeSummary(b *broker.Broker) error {
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPE\tSOURCE\tDESTINATIONS")
	for _, name := range b.Names() {
		s := b.Describe(name)
		source := "-"
		if s.HasSource {
			source = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Name, source, s.Destinations)
	}
	return tw.Flush()
}
