package bridge

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/vk/componentry/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Emitter sends events to the remote side.
type Emitter interface {
	Emit(event string, payload map[string]any)
	Close() error
}

// DialFunc creates the Emitter used by the bridge.
type DialFunc func(ctx context.Context, cfg Config) (Emitter, error)

type socketEmitter struct {
	io *socket.Socket
}

func (s *socketEmitter) Emit(event string, payload map[string]any) {
	s.io.Emit(event, payload)
}

func (s *socketEmitter) Close() error {
	s.io.Disconnect()
	return nil
}

// DialSocketIO connects a websocket-only socket.io client. The connection is
// established in the background; events emitted before it is up are
// buffered by the client.
func DialSocketIO(ctx context.Context, cfg Config) (Emitter, error) {
	logger := ctxlog.FromContext(ctx).With("component", Name, "url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid bridge URL '%s': scheme and host are required", cfg.URL)
	}

	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
	}
	opts := clientOptions(parsedURL, cfg)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Bridge connected", "sid", io.Id())
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Bridge connection failed", "error", errs)
	})

	io.Connect()
	return &socketEmitter{io: io}, nil
}

// clientOptions builds the client options for u. The URL path overrides the
// server path only when present; otherwise the client default
// (/socket.io) applies.
func clientOptions(u *url.URL, cfg Config) *socket.Options {
	opts := socket.DefaultOptions()
	if path := u.Path; path != "" && path != "/" {
		opts.SetPath(path)
	}
	if cfg.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	return opts
}
