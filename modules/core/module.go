// Package core provides the component every application starts with. It
// owns the shared interface points (main, before-run, lifecycle,
// configuration-changed, shutdown) and binds the hook pipe factory and the
// message buses other components resolve.
package core

import (
	"context"
	"io"
	"os"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/hook"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/internal/token"
)

// Name is the registered name of the core component.
const Name = "core"

// Interface points of the core component.
var (
	// Main collects registry.Executable values run by the application.
	Main = token.New("core/main")
	// BeforeRun collects filter hooks that may veto startup. Hooks receive
	// a RunInfo argument.
	BeforeRun = token.New("core/before-run")
	// Lifecycle carries {phase: "started"|"stopped"} messages.
	Lifecycle = token.New("core/lifecycle")
	// ConfigurationChanged carries a message after a configuration reload.
	ConfigurationChanged = token.New("core/configuration-changed")
	// Shutdown collects io.Closer values closed when the application stops.
	Shutdown = token.New("core/shutdown")
)

// Global service identifiers bound during the root scope.
var (
	HookPipeService       = registry.GlobalServiceName(Name, "hook-pipe")
	RootMessageBusService = registry.GlobalServiceName(Name, "root-message-bus")
	MessageBusService     = registry.GlobalServiceName(Name, "message-bus")
	OutputService         = registry.GlobalServiceName(Name, "output")
)

// RunInfo is passed to before-run hooks.
type RunInfo struct {
	Components  []string
	ConfigFiles []string
	Except      []string
}

// Module implements the registry.Module interface for this package.
type Module struct {
	out io.Writer
}

// New returns the core module. out is the application's output writer,
// exposed to other components as OutputService; nil means os.Stdout.
func New(out io.Writer) *Module {
	if out == nil {
		out = os.Stdout
	}
	return &Module{out: out}
}

// Register registers the core component.
func (m *Module) Register(r *registry.Registry) error {
	_, err := r.AddFromDescriptor(registry.Descriptor{
		Name: Name,
		InterfaceTokens: map[string]token.Token{
			"main":                  Main,
			"before-run":            BeforeRun,
			"lifecycle":             Lifecycle,
			"configuration-changed": ConfigurationChanged,
			"shutdown":              Shutdown,
		},
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: m.bindRoot,
		},
	})
	return err
}

func (m *Module) bindRoot(_ context.Context, b *registry.Binder, _ registry.LookupService, _ *container.Container, _ ...any) error {
	b.BindGlobalService("hook-pipe").To(func(r container.Resolver) (any, error) {
		return hook.NewFactory(r), nil
	}).InSingletonScope()

	b.BindGlobalService("root-message-bus").ToConstant(bus.New())

	b.BindGlobalService("message-bus").To(func(r container.Resolver) (any, error) {
		root, err := RootBus(r)
		if err != nil {
			return nil, err
		}
		return bus.NewLayered(root), nil
	})

	b.BindGlobalService("output").ToConstant(m.out)
	return nil
}

// Pipes resolves the hook pipe factory.
func Pipes(r container.Resolver) (*hook.Factory, error) {
	return container.Resolve[*hook.Factory](r, HookPipeService)
}

// RootBus resolves the application-wide message bus.
func RootBus(r container.Resolver) (*bus.Bus, error) {
	return container.Resolve[*bus.Bus](r, RootMessageBusService)
}

// MessageBus resolves a new layered bus on top of the root bus.
func MessageBus(r container.Resolver) (*bus.Layered, error) {
	return container.Resolve[*bus.Layered](r, MessageBusService)
}

// Output resolves the application's output writer.
func Output(r container.Resolver) (io.Writer, error) {
	return container.Resolve[io.Writer](r, OutputService)
}
