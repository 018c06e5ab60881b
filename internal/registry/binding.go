package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
)

// BindingSetupError wraps a failure raised by a scope setup callback.
type BindingSetupError struct {
	Component string
	Scope     string
	Err       error
}

func (e *BindingSetupError) Error() string {
	return fmt.Sprintf("binding setup of component '%s' for scope '%s' failed: %v", e.Component, e.Scope, e.Err)
}

func (e *BindingSetupError) Unwrap() error {
	return e.Err
}

// GetBinder returns a binder scoped to the named component.
func (r *Registry) GetBinder(name string, c *container.Container) (*Binder, error) {
	comp, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return newBinder(comp, c), nil
}

// ExecuteBinding runs the setup callback the component declared for scope.
// Components without a callback for the scope are skipped without error.
// The root scope also binds the component itself under its meta identifier
// before the callback runs.
func (r *Registry) ExecuteBinding(ctx context.Context, name string, c *container.Container, scope string, args ...any) error {
	binder, err := r.GetBinder(name, c)
	if err != nil {
		return err
	}
	ctx, logger := ctxlog.With(ctx, "component", name, "scope", scope)

	fn, ok := r.binding(name, scope)
	if !ok || fn == nil {
		logger.Debug("Component does not bind this scope, skipping.")
		return nil
	}

	if scope == ScopeRoot {
		c.Rebind(MetaInjectionName(name)).ToConstant(binder.Component())
	}

	logger.Debug("Executing component binding.")
	if err := invoke(ctx, fn, binder, r, c, args); err != nil {
		return &BindingSetupError{Component: name, Scope: scope, Err: err}
	}
	return nil
}

// invoke calls a setup callback, turning a panic into an error.
func invoke(ctx context.Context, fn BindingFunc, b *Binder, lookup LookupService, c *container.Container, args []any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx, b, lookup, c, args...)
}

// Autobind executes scope for every registered component, in registration
// order, skipping components whose name is listed in except. Names are
// compared exactly. An empty scope means ScopeRoot. The first failing
// callback aborts the pass.
func (r *Registry) Autobind(ctx context.Context, c *container.Container, except []string, scope string, args ...any) error {
	if scope == "" {
		scope = ScopeRoot
	}
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		if slices.Contains(except, name) {
			logger.Debug("Component excluded from autobind.", "component", name, "scope", scope)
			continue
		}
		if err := r.ExecuteBinding(ctx, name, c, scope, args...); err != nil {
			return err
		}
	}
	logger.Debug("Autobind finished.", "scope", scope, "components", len(r.Names()))
	return nil
}
