package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/mitchellh/copystructure"
	"github.com/vk/componentry/internal/component"
	"github.com/vk/componentry/internal/token"
)

// Registry holds every registered component and its binding table for a
// single application instance.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	components map[string]*component.Component
	order      []string
	bindings   map[string]map[string]BindingFunc
}

// New creates and initializes a new Registry instance. A nil logger falls
// back to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:     logger,
		components: make(map[string]*component.Component),
		bindings:   make(map[string]map[string]BindingFunc),
	}
}

// Add registers a component under its name.
func (r *Registry) Add(c *component.Component) error {
	if c.Name() == "" {
		return fmt.Errorf("component name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.Name()]; exists {
		return fmt.Errorf("component '%s': %w", c.Name(), component.ErrDuplicateRegistration)
	}
	r.components[c.Name()] = c
	r.order = append(r.order, c.Name())
	r.logger.Debug("Registering component.", "name", c.Name(), "interfaces", c.InterfaceNames())
	return nil
}

// AddFromDescriptor builds a component from d, registers it and stores its
// binding table. The default configuration is deep-copied, so later changes
// to d cannot reach the component.
func (r *Registry) AddFromDescriptor(d Descriptor) (*component.Component, error) {
	interfaces := make(map[string]token.Token, len(d.Interfaces)+len(d.InterfaceTokens))
	maps.Copy(interfaces, d.InterfaceTokens)
	for _, name := range d.Interfaces {
		if _, declared := interfaces[name]; declared {
			return nil, fmt.Errorf("component '%s': interface '%s' declared twice", d.Name, name)
		}
		interfaces[name] = token.New(d.Name + "/" + name)
	}

	var config map[string]any
	if d.DefaultConfiguration != nil {
		copied, err := copystructure.Copy(d.DefaultConfiguration)
		if err != nil {
			return nil, fmt.Errorf("component '%s': copy default configuration: %w", d.Name, err)
		}
		config = copied.(map[string]any)
	}

	c := component.New(d.Name, interfaces, config)
	if err := r.Add(c); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.bindings[d.Name] = maps.Clone(d.Bindings)
	r.mu.Unlock()
	return c, nil
}

// Lookup returns the registered component. Repeated lookups return the same
// pointer; callers must not treat it as theirs to mutate beyond Configure.
func (r *Registry) Lookup(name string) (*component.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("component '%s': %w", name, component.ErrNotFound)
	}
	return c, nil
}

// IsRegistered reports whether a component with that name exists.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[name]
	return ok
}

// Names returns component names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Components returns the registered components in registration order.
func (r *Registry) Components() []*component.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*component.Component, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.components[name])
	}
	return out
}

// Scopes returns the scopes a component declared, sorted.
func (r *Registry) Scopes(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.bindings[name]))
}

func (r *Registry) binding(name, scope string) (BindingFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bindings[name][scope]
	return fn, ok
}
