// Package console prints core lifecycle and configuration messages to the
// application's output writer.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/hook"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
)

// Name is the registered name of the console component.
const Name = "console"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Config is the decoded configuration of the console component.
type Config struct {
	Prefix string `config:"prefix"`
}

// Register registers the console component.
func (m *Module) Register(r *registry.Registry) error {
	_, err := r.AddFromDescriptor(registry.Descriptor{
		Name:                 Name,
		DefaultConfiguration: map[string]any{"prefix": "»"},
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: bindRoot,
		},
	})
	return err
}

func bindRoot(ctx context.Context, b *registry.Binder, _ registry.LookupService, c *container.Container, _ ...any) error {
	var cfg Config
	if err := b.Component().DecodeConfiguration(&cfg); err != nil {
		return err
	}
	out, err := core.Output(c)
	if err != nil {
		return err
	}
	root, err := core.RootBus(c)
	if err != nil {
		return err
	}

	p := &Printer{out: out, prefix: cfg.Prefix}
	root.On(core.Lifecycle, p.Handle)
	root.On(core.ConfigurationChanged, p.Handle)

	b.BindExtension(core.BeforeRun).ToConstant(hook.Hook(countComponents))

	ctxlog.FromContext(ctx).Debug("Console attached to root bus.", "prefix", cfg.Prefix)
	return nil
}

// countComponents reports how many components take part in the run. It
// never vetoes startup.
func countComponents(_ context.Context, _ hook.Mode, args ...any) (hook.Result, error) {
	for _, arg := range args {
		if info, ok := arg.(core.RunInfo); ok {
			return hook.AcceptedWith(fmt.Sprintf("%d components registered", len(info.Components))), nil
		}
	}
	return hook.Accepted(), nil
}

// Printer writes messages with their payload keys sorted.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
}

// NewPrinter returns a printer writing to out.
func NewPrinter(out io.Writer, prefix string) *Printer {
	return &Printer{out: out, prefix: prefix}
}

// Handle is a bus.Handler.
func (p *Printer) Handle(_ context.Context, m bus.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "%s %s\n", p.prefix, m.ComponentInterface.Label()); err != nil {
		return err
	}
	if m.Payload == nil {
		_, err := fmt.Fprintln(p.out, "      (null)")
		return err
	}

	keys := make([]string, 0, len(m.Payload))
	for k := range m.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(p.out, "      %s = %v\n", k, m.Payload[k]); err != nil {
			return err
		}
	}
	return nil
}
