package component

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/vk/componentry/internal/token"
)

// Component is a registered unit of functionality.
type Component struct {
	name       string
	interfaces map[string]token.Token

	mu     sync.RWMutex
	config map[string]any
}

// New creates a component. Both maps are copied; the caller keeps ownership
// of what it passed in.
func New(name string, interfaces map[string]token.Token, config map[string]any) *Component {
	c := &Component{
		name:       name,
		interfaces: make(map[string]token.Token, len(interfaces)),
		config:     make(map[string]any, len(config)),
	}
	maps.Copy(c.interfaces, interfaces)
	maps.Copy(c.config, config)
	return c
}

// Name returns the unique component name.
func (c *Component) Name() string {
	return c.name
}

// Interfaces returns a copy of the local-name to token table.
func (c *Component) Interfaces() map[string]token.Token {
	return maps.Clone(c.interfaces)
}

// InterfaceNames returns the declared local interface names, sorted.
func (c *Component) InterfaceNames() []string {
	return slices.Sorted(maps.Keys(c.interfaces))
}

// Interface returns the token declared under the given local name.
func (c *Component) Interface(name string) (token.Token, error) {
	t, ok := c.interfaces[name]
	if !ok {
		return token.Token{}, fmt.Errorf("interface '%s' of component '%s': %w", name, c.name, ErrNotFound)
	}
	return t, nil
}

// MustInterface is like Interface but panics on unknown names. It is meant
// for setup code where a missing interface is a programming error.
func (c *Component) MustInterface(name string) token.Token {
	t, err := c.Interface(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Configuration returns a shallow copy of the current configuration.
func (c *Component) Configuration() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.config)
}

// Get returns a single configuration value.
func (c *Component) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.config[key]
	return v, ok
}

// Configure merges updates into the configuration. Existing keys are
// overwritten, nested values are replaced rather than merged.
func (c *Component) Configure(updates map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.config, updates)
}

// DecodeConfiguration decodes the current configuration into target, which
// must be a pointer to a struct. Fields are matched with the `config` tag and
// scalar types are converted loosely, so "8080" decodes into an int.
func (c *Component) DecodeConfiguration(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "config",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("component '%s': %w", c.name, err)
	}
	if err := decoder.Decode(c.Configuration()); err != nil {
		return fmt.Errorf("component '%s': decode configuration: %w", c.name, err)
	}
	return nil
}
