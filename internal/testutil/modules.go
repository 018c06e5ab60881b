package testutil

import (
	"context"
	"sync"

	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
)

type descriptorModule struct {
	d registry.Descriptor
}

func (m descriptorModule) Register(r *registry.Registry) error {
	_, err := r.AddFromDescriptor(m.d)
	return err
}

// ModuleOf wraps a descriptor into a registry.Module.
func ModuleOf(d registry.Descriptor) registry.Module {
	return descriptorModule{d: d}
}

// NoOpModule registers a component named "noop" that binds nothing. Pass it
// to keep NewApp from registering the default modules.
func NoOpModule() registry.Module {
	return ModuleOf(registry.Descriptor{Name: "noop"})
}

// ExecutableFunc adapts a function to registry.Executable.
type ExecutableFunc func(ctx context.Context) error

// Execute implements registry.Executable.
func (f ExecutableFunc) Execute(ctx context.Context) error { return f(ctx) }

// MainModule registers a component whose root scope binds fn as an
// executable on core/main.
func MainModule(name string, fn ExecutableFunc) registry.Module {
	return ModuleOf(registry.Descriptor{
		Name: name,
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: func(_ context.Context, b *registry.Binder, _ registry.LookupService, _ *container.Container, _ ...any) error {
				b.BindExecutable(core.Main, func(container.Resolver) (registry.Executable, error) {
					return fn, nil
				})
				return nil
			},
		},
	})
}

// Closer records whether Close was called.
type Closer struct {
	mu     sync.Mutex
	closed int
	Err    error
}

// Close implements io.Closer.
func (c *Closer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return c.Err
}

// Closed returns how many times Close was called.
func (c *Closer) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
