// Package http_request provides the "http" plugin, which serves the result
// of an HTTP request on its output pipe.
package http_request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sabberworm/wok/internal/dom"
	"github.com/sabberworm/wok/internal/plugin"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Name is the plugin name registered by Module.
const Name = "http"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Module implements the registry.Module interface for this package. A nil
// Client uses a shared client with DefaultTimeout.
type Module struct {
	Client *http.Client
}

var sharedClient = &http.Client{Timeout: DefaultTimeout}

// Register registers the plugin factory.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = sharedClient
	}
	r.Register(Name, Factory(client))
}

// Response is the data served for each request.
type Response struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// String returns the response body.
func (r *Response) String() string { return r.Body }

// Factory returns a plugin factory issuing requests with client. Arguments
// are the URL and an optional method (default GET). A string request option
// replaces the URL for that request.
func Factory(client *http.Client) plugin.Factory {
	return func(st *plugin.Stage, el dom.Element, args ...cty.Value) (*plugin.Controls, error) {
		url, err := plugin.StringArg(args, 0, "")
		if err != nil {
			return nil, err
		}
		method, err := plugin.StringArg(args, 1, http.MethodGet)
		if err != nil {
			return nil, err
		}
		method = strings.ToUpper(method)

		request := func(options ...any) (any, error) {
			target := url
			if len(options) > 0 {
				if s, ok := options[0].(string); ok && s != "" {
					target = s
				}
			}
			if target == "" {
				return nil, fmt.Errorf("http plugin on %s has no URL", el)
			}

			ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
			defer cancel()
			return Do(ctx, client, method, target)
		}
		return &plugin.Controls{Request: request}, nil
	}
}

// Do performs a single request and reads the whole body.
func Do(ctx context.Context, client *http.Client, method, url string) (*Response, error) {
	slog.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("Received HTTP response", "status", resp.Status)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
