// Package journal records selected root-bus messages in a sqlite database.
//
// Configuration:
//
//	component "journal" {
//	  path   = "/var/lib/componentry/journal.db" # empty disables the journal
//	  tokens = ["core/lifecycle"]                # interfaces to record
//	}
//
// When enabled the store is exposed as the global service "journal:store",
// and every recorded message is announced as "journal/recorded" through the
// journal's layered message bus.
package journal

import (
	"context"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/internal/token"
	"github.com/vk/componentry/modules/core"
)

// Name is the registered name of the journal component.
const Name = "journal"

// Recorded is emitted after a message has been stored. Its payload carries
// the recorded "interface" label. Recorded messages are never journaled.
var Recorded = token.New("journal/recorded")

// StoreService identifies the *Store bound by an enabled journal.
var StoreService = registry.GlobalServiceName(Name, "store")

// Config is the decoded configuration of the journal component.
type Config struct {
	Path   string   `config:"path"`
	Tokens []string `config:"tokens"`
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the journal component.
func (m *Module) Register(r *registry.Registry) error {
	_, err := r.AddFromDescriptor(registry.Descriptor{
		Name: Name,
		InterfaceTokens: map[string]token.Token{
			"recorded": Recorded,
		},
		DefaultConfiguration: map[string]any{
			"path":   "",
			"tokens": []any{"core/lifecycle"},
		},
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: bindRoot,
		},
	})
	return err
}

func bindRoot(ctx context.Context, b *registry.Binder, lookup registry.LookupService, c *container.Container, _ ...any) error {
	logger := ctxlog.FromContext(ctx)

	var cfg Config
	if err := b.Component().DecodeConfiguration(&cfg); err != nil {
		return err
	}
	if cfg.Path == "" {
		logger.Debug("Journal disabled, no path configured.")
		return nil
	}

	tokens, err := registry.ResolveInterfaces(lookup, cfg.Tokens)
	if err != nil {
		return err
	}
	mb, err := core.MessageBus(c)
	if err != nil {
		return err
	}
	store, err := OpenStore(ctx, cfg.Path)
	if err != nil {
		return err
	}

	b.BindGlobalService("store").ToConstant(store)
	b.BindExtension(core.Shutdown).ToConstant(store)

	record := func(ctx context.Context, m bus.Message) error {
		if m.ComponentInterface == Recorded {
			return nil
		}
		if err := store.Append(ctx, m); err != nil {
			return err
		}
		return mb.Emit(ctx, bus.Message{
			ComponentInterface: Recorded,
			Payload:            map[string]any{"interface": m.ComponentInterface.Label()},
		})
	}
	for _, t := range tokens {
		mb.Root().On(t, record)
	}
	logger.Info("Journal recording messages.", "path", cfg.Path, "tokens", cfg.Tokens)
	return nil
}

// Lookup resolves the journal store, if the journal is enabled.
func Lookup(r container.Resolver) (*Store, error) {
	return container.Resolve[*Store](r, StoreService)
}
