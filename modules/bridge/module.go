// Package bridge forwards selected root-bus messages to a socket.io server.
//
// Configuration:
//
//	component "bridge" {
//	  url       = "http://localhost:3000/socket.io/" # empty keeps the bridge inert
//	  namespace = "/"
//	  event     = "componentry"
//	  tokens    = ["core/lifecycle"]
//	}
//
// Every forwarded message is sent as {interface, payload}.
package bridge

import (
	"context"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
)

// Name is the registered name of the bridge component.
const Name = "bridge"

// Config is the decoded configuration of the bridge component.
type Config struct {
	URL                string   `config:"url"`
	Namespace          string   `config:"namespace"`
	Event              string   `config:"event"`
	Tokens             []string `config:"tokens"`
	InsecureSkipVerify bool     `config:"insecure_skip_verify"`
}

// Module implements the registry.Module interface for this package.
type Module struct {
	// Dial overrides how the bridge connects; nil means DialSocketIO.
	Dial DialFunc
}

// Register registers the bridge component.
func (m *Module) Register(r *registry.Registry) error {
	_, err := r.AddFromDescriptor(registry.Descriptor{
		Name: Name,
		DefaultConfiguration: map[string]any{
			"url":                  "",
			"namespace":            "/",
			"event":                "componentry",
			"tokens":               []any{"core/lifecycle"},
			"insecure_skip_verify": false,
		},
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: m.bindRoot,
		},
	})
	return err
}

func (m *Module) bindRoot(ctx context.Context, b *registry.Binder, lookup registry.LookupService, c *container.Container, _ ...any) error {
	logger := ctxlog.FromContext(ctx)

	var cfg Config
	if err := b.Component().DecodeConfiguration(&cfg); err != nil {
		return err
	}
	if cfg.URL == "" {
		logger.Debug("Bridge inert, no url configured.")
		return nil
	}

	tokens, err := registry.ResolveInterfaces(lookup, cfg.Tokens)
	if err != nil {
		return err
	}
	root, err := core.RootBus(c)
	if err != nil {
		return err
	}

	dial := m.Dial
	if dial == nil {
		dial = DialSocketIO
	}
	emitter, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	b.BindExtension(core.Shutdown).ToConstant(emitter)

	forward := Forwarder(emitter, cfg.Event)
	for _, t := range tokens {
		root.On(t, forward)
	}
	logger.Info("Bridge forwarding messages.", "url", cfg.URL, "event", cfg.Event, "tokens", cfg.Tokens)
	return nil
}

// Forwarder returns a bus.Handler sending every message as event.
func Forwarder(e Emitter, event string) bus.Handler {
	return func(_ context.Context, m bus.Message) error {
		e.Emit(event, map[string]any{
			"interface": m.ComponentInterface.Label(),
			"payload":   m.Payload,
		})
		return nil
	}
}
