package registry

import (
	"context"
	"fmt"

	"github.com/vk/componentry/internal/component"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/token"
)

// ScopeRoot is the scope Autobind runs when none is given. Executing it also
// exposes the component under its meta identifier.
const ScopeRoot = "root"

// BindingFunc is a scope setup callback.
type BindingFunc func(ctx context.Context, b *Binder, lookup LookupService, c *container.Container, args ...any) error

// Descriptor is the declarative registration payload of a component. It is
// consumed once by AddFromDescriptor and not retained.
type Descriptor struct {
	Name string
	// Interfaces lists local interface names; the registry mints a token for each.
	Interfaces []string
	// InterfaceTokens declares interfaces whose tokens were minted by the
	// module itself, typically package-level variables other code imports.
	InterfaceTokens      map[string]token.Token
	DefaultConfiguration map[string]any
	Bindings             map[string]BindingFunc
}

// LookupService is the read-only view of the registry handed to callbacks.
type LookupService interface {
	Lookup(name string) (*component.Component, error)
	IsRegistered(name string) bool
}

// Module is implemented by every package that contributes a component.
type Module interface {
	Register(r *Registry) error
}

// Executable is the contract of values bound with Binder.BindExecutable.
type Executable interface {
	Execute(ctx context.Context) error
}

// MetaInjectionName returns the identifier under which a component is
// exposed during its root scope binding.
func MetaInjectionName(componentName string) string {
	return fmt.Sprintf("meta:component//%s", componentName)
}

// GlobalServiceName returns the process-wide identifier of a service a
// component binds with BindGlobalService.
func GlobalServiceName(componentName, name string) string {
	return componentName + ":" + name
}
