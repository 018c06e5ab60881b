package registry

import (
	"reflect"

	"github.com/vk/componentry/internal/component"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/token"
)

// Binder restricts what a component's setup code may bind. It carries no
// state besides the component and the container.
type Binder struct {
	component *component.Component
	container *container.Container
}

func newBinder(c *component.Component, ct *container.Container) *Binder {
	return &Binder{component: c, container: ct}
}

// Component returns the component this binder is scoped to.
func (b *Binder) Component() *component.Component {
	return b.component
}

// BindLocalService binds under a token the component keeps to itself. The
// token is never added to the component's interface table, so other
// components have no way to discover or rebind it.
func (b *Binder) BindLocalService(id token.Token) *container.BindingSyntax {
	return b.container.Bind(id)
}

// BindGlobalService binds under "<component>:<name>", discoverable by
// anyone who knows the component and service names.
func (b *Binder) BindGlobalService(name string) *container.BindingSyntax {
	return b.container.Bind(GlobalServiceName(b.component.Name(), name))
}

// BindExtension adds an implementation under a shared interface token. Any
// number of components may bind against the same token.
func (b *Binder) BindExtension(t token.Token) *container.BindingSyntax {
	return b.container.Bind(t)
}

// BindExecutable adds an Executable under a shared interface token.
func (b *Binder) BindExecutable(t token.Token, ctor func(container.Resolver) (Executable, error)) *container.BindingSyntax {
	return b.BindExtension(t).To(func(r container.Resolver) (any, error) {
		e, err := ctor(r)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}

// BindLocalServiceToSelf binds T to its own constructor, keyed by the Go type.
// Resolve it again with ResolveSelf.
func BindLocalServiceToSelf[T any](b *Binder, ctor func(container.Resolver) (T, error)) *container.BindingSyntax {
	return b.container.Bind(reflect.TypeFor[T]()).To(func(r container.Resolver) (any, error) {
		v, err := ctor(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// ResolveSelf resolves a value bound with BindLocalServiceToSelf.
func ResolveSelf[T any](r container.Resolver) (T, error) {
	return container.Resolve[T](r, reflect.TypeFor[T]())
}
