package hook

import (
	"context"
	"fmt"

	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/token"
)

// Factory builds pipes from whatever is bound in a container.
type Factory struct {
	resolver container.Resolver
}

// NewFactory returns a factory reading bindings from r.
func NewFactory(r container.Resolver) *Factory {
	return &Factory{resolver: r}
}

// Pipe collects every hook currently bound under t. An unbound token yields
// an empty pipe, whose runs always succeed.
func (f *Factory) Pipe(t token.Token) (*Pipe, error) {
	if !f.resolver.IsBound(t) {
		return NewPipe(nil), nil
	}

	bound, err := f.resolver.GetAll(t)
	if err != nil {
		return nil, fmt.Errorf("collect hooks for %s: %w", t, err)
	}

	hooks := make([]Hook, 0, len(bound))
	for i, v := range bound {
		h, err := asHook(v)
		if err != nil {
			return nil, fmt.Errorf("hook %d of %s: %w", i, t, err)
		}
		hooks = append(hooks, h)
	}
	return NewPipe(hooks), nil
}

func asHook(v any) (Hook, error) {
	switch h := v.(type) {
	case Hook:
		return h, nil
	case func(context.Context, Mode, ...any) (Result, error):
		return h, nil
	case Handler:
		return h.Handle, nil
	default:
		return nil, fmt.Errorf("bound value of type %T is not a hook", v)
	}
}
