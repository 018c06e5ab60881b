package config

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/multierr"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the unified representation of all configuration sources.
type Model struct {
	App AppSettings
	// Components maps a component name to the attributes written for it.
	Components map[string]map[string]any
	// Files lists the files the model was loaded from, in load order.
	Files []string
}

// AppSettings holds application-level options.
type AppSettings struct {
	// Except names components left out of autobind. Entries prefixed with
	// "glob:" are patterns over component names.
	Except []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Components: make(map[string]map[string]any)}
}

// Merge overlays attrs onto the attributes already recorded for a
// component. Later values win.
func (m *Model) Merge(name string, attrs map[string]any) {
	if m.Components == nil {
		m.Components = make(map[string]map[string]any)
	}
	existing, ok := m.Components[name]
	if !ok {
		existing = make(map[string]any, len(attrs))
		m.Components[name] = existing
	}
	maps.Copy(existing, attrs)
}

// Component returns a copy of the attributes recorded for name, or nil.
func (m *Model) Component(name string) map[string]any {
	return maps.Clone(m.Components[name])
}

// Names returns the configured component names, sorted.
func (m *Model) Names() []string {
	return slices.Sorted(maps.Keys(m.Components))
}

// CheckKnown reports every configured component for which known returns
// false.
func (m *Model) CheckKnown(known func(name string) bool) error {
	var errs error
	for _, name := range m.Names() {
		if !known(name) {
			errs = multierr.Append(errs, fmt.Errorf("configuration for unknown component '%s'", name))
		}
	}
	return errs
}
