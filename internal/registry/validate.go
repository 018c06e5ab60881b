package registry

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks every registered component for problems that would only
// surface later at binding time: nil setup callbacks, unnamed scopes, and
// unnamed or zero interface tokens. All problems are reported together.
func (r *Registry) Validate() error {
	var errs error

	for _, c := range r.Components() {
		for name, t := range c.Interfaces() {
			if name == "" {
				errs = multierr.Append(errs, fmt.Errorf("component '%s': interface with empty name", c.Name()))
			}
			if t.IsZero() {
				errs = multierr.Append(errs, fmt.Errorf("component '%s': interface '%s' has a zero token", c.Name(), name))
			}
		}

		r.mu.RLock()
		table := r.bindings[c.Name()]
		for scope, fn := range table {
			if scope == "" {
				errs = multierr.Append(errs, fmt.Errorf("component '%s': binding with empty scope name", c.Name()))
			}
			if fn == nil {
				errs = multierr.Append(errs, fmt.Errorf("component '%s': scope '%s' has a nil setup callback", c.Name(), scope))
			}
		}
		r.mu.RUnlock()
	}

	if errs != nil {
		return fmt.Errorf("registry validation failed: %w", errs)
	}
	return nil
}
