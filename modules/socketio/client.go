package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/sabberworm/wok/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ConnectTimeout bounds the wait for the server's connect event.
const ConnectTimeout = 15 * time.Second

// Conn is a connected socket.io client.
type Conn interface {
	On(event string, fn func(args ...any))
	Emit(event string, args ...any)
	Close()
}

// Dialer opens a connection to a socket.io server.
type Dialer func(ctx context.Context, rawURL, namespace string, insecure bool) (Conn, error)

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) On(event string, fn func(args ...any)) {
	c.io.On(types.EventName(event), func(args ...any) { fn(args...) })
}

func (c *socketConn) Emit(event string, args ...any) {
	c.io.Emit(event, args...)
}

func (c *socketConn) Close() {
	c.io.Disconnect()
}

// Dial connects over the websocket transport and waits for the connect
// event, ConnectTimeout, or ctx, whichever comes first.
func Dial(ctx context.Context, rawURL, namespace string, insecure bool) (Conn, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", Name, "url", rawURL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if insecure {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Connection error", "error", err)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", ConnectTimeout)
	}
}
