package container

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotBound is returned when resolving an identifier with no bindings.
	ErrNotBound = errors.New("identifier not bound")

	// ErrAmbiguous is returned by Get when more than one binding exists.
	ErrAmbiguous = errors.New("identifier has multiple bindings")
)

// Resolver is the read side of the container, handed to providers so they
// can resolve their own dependencies.
type Resolver interface {
	Get(id any) (any, error)
	GetAll(id any) ([]any, error)
	IsBound(id any) bool
}

// Provider constructs an instance for a binding.
type Provider func(r Resolver) (any, error)

// Container holds bindings. The zero value is not usable; call New.
type Container struct {
	mu       sync.RWMutex
	bindings map[any][]*binding
}

// New returns an empty container.
func New() *Container {
	return &Container{bindings: make(map[any][]*binding)}
}

// Bind adds a new binding for id and returns its syntax for choosing the
// target. Every call adds a binding; previous ones are kept. id must be a
// comparable value.
func (c *Container) Bind(id any) *BindingSyntax {
	b := &binding{id: id}
	c.mu.Lock()
	c.bindings[id] = append(c.bindings[id], b)
	c.mu.Unlock()
	return &BindingSyntax{b: b}
}

// Rebind drops every binding for id and adds a fresh one.
func (c *Container) Rebind(id any) *BindingSyntax {
	c.Unbind(id)
	return c.Bind(id)
}

// Unbind drops every binding for id. Unbinding an unknown id is a no-op.
func (c *Container) Unbind(id any) {
	c.mu.Lock()
	delete(c.bindings, id)
	c.mu.Unlock()
}

// IsBound reports whether at least one binding exists for id.
func (c *Container) IsBound(id any) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bindings[id]) > 0
}

// Get resolves the single binding for id.
func (c *Container) Get(id any) (any, error) {
	bs := c.snapshot(id)
	switch len(bs) {
	case 0:
		return nil, fmt.Errorf("%v: %w", id, ErrNotBound)
	case 1:
		return bs[0].resolve(c)
	default:
		return nil, fmt.Errorf("%v (%d bindings): %w", id, len(bs), ErrAmbiguous)
	}
}

// GetAll resolves every binding for id in the order they were added.
func (c *Container) GetAll(id any) ([]any, error) {
	bs := c.snapshot(id)
	if len(bs) == 0 {
		return nil, fmt.Errorf("%v: %w", id, ErrNotBound)
	}
	out := make([]any, 0, len(bs))
	for i, b := range bs {
		v, err := b.resolve(c)
		if err != nil {
			return nil, fmt.Errorf("binding %d of %v: %w", i, id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// snapshot copies the binding list so resolution never runs under the lock;
// providers are free to call back into the container.
func (c *Container) snapshot(id any) []*binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*binding(nil), c.bindings[id]...)
}
