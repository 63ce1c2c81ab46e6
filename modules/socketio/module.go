// Package socketio provides the "socketio" plugin. Values rendered to its
// input are emitted as an event, and the latest payload of the same event
// received from the server is served to requests on its output.
//
// Events arrive on the socket.io goroutine while the document is owned by
// the binding goroutine, so received payloads are only stored. They reach
// the document when a subscriber pulls them.
package socketio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "socketio"

// DefaultEvent is used when no event argument is given.
const DefaultEvent = "message"

// Module implements the registry.Module interface for this package. A nil
// Dial uses the package Dial. Connections opened by the registered factory
// stay open until Close.
type Module struct {
	Dial Dialer

	mu    sync.Mutex
	conns []Conn
}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	dial := m.Dial
	if dial == nil {
		dial = Dial
	}
	r.Register(Name, Factory(m.tracking(dial)))
}

// tracking wraps dial so every connection it opens is closed by Close.
func (m *Module) tracking(dial Dialer) Dialer {
	return func(ctx context.Context, rawURL, namespace string, insecure bool) (Conn, error) {
		conn, err := dial(ctx, rawURL, namespace, insecure)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.conns = append(m.conns, conn)
		m.mu.Unlock()
		return conn, nil
	}
}

// Close disconnects every connection opened since the last Close.
func (m *Module) Close() error {
	m.mu.Lock()
	conns := m.conns
	m.conns = nil
	m.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	if len(conns) > 0 {
		slog.Debug("Closed socket.io connections.", "count", len(conns))
	}
	return nil
}

type client struct {
	st        *plugin.Stage
	el        dom.Element
	dial      Dialer
	url       string
	event     string
	namespace string
	insecure  bool

	mu   sync.Mutex
	conn Conn
	last []any
}

// Factory returns a plugin factory connecting with dial. Arguments are the
// server URL, the event name (default "message"), the namespace (default
// "/") and whether to skip TLS verification.
//
// With an output pipe the connection is opened while binding so no event is
// missed. Otherwise it is opened on the first render.
func Factory(dial Dialer) plugin.Factory {
	return func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		c := &client{st: st, el: el, dial: dial}

		var err error
		if c.url, err = plugin.StringArg(args, 0, ""); err != nil {
			return nil, err
		}
		if c.url == "" {
			return nil, fmt.Errorf("socketio plugin needs a server URL")
		}
		if c.event, err = plugin.StringArg(args, 1, DefaultEvent); err != nil {
			return nil, err
		}
		if c.namespace, err = plugin.StringArg(args, 2, "/"); err != nil {
			return nil, err
		}
		if len(args) > 3 && !args[3].IsNull() {
			if args[3].Type() != cty.Bool {
				return nil, fmt.Errorf("argument 4 must be a bool, got %s", args[3].Type().FriendlyName())
			}
			c.insecure = args[3].True()
		}

		if st.HasOutput() {
			if _, err := c.connect(); err != nil {
				return nil, err
			}
		}
		return &plugin.Controls{Render: c.render, Request: c.request}, nil
	}
}

func (c *client) connect() (Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := c.dial(context.Background(), c.url, c.namespace, c.insecure)
	if err != nil {
		return nil, err
	}
	conn.On(c.event, c.receive)
	c.conn = conn
	return conn, nil
}

// receive runs on the socket.io goroutine. It must not touch the element or
// the pipes.
func (c *client) receive(args ...any) {
	c.mu.Lock()
	c.last = append([]any(nil), args...)
	c.mu.Unlock()

	slog.Debug("Received socket.io event.", "event", c.event, "args", len(args))
}

func (c *client) render(values ...any) {
	conn, err := c.connect()
	if err != nil {
		slog.Error("Could not connect to socket.io server.", "element", c.el.String(), "url", c.url, "error", err)
		return
	}
	slog.Debug("Emitting event", "element", c.el.String(), "event", c.event, "args", len(values))
	conn.Emit(c.event, values...)
}

func (c *client) request(options ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch len(c.last) {
	case 0:
		return nil, nil
	case 1:
		return c.last[0], nil
	default:
		return append([]any(nil), c.last...), nil
	}
}

