package container

import (
	"fmt"
	"sync"
)

type binding struct {
	id any

	// mu guards the target, which BindingSyntax sets after the binding is
	// already visible to resolvers.
	mu        sync.RWMutex
	provider  Provider
	singleton bool

	once  sync.Once
	value any
	err   error
}

func (b *binding) target() (Provider, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.provider, b.singleton
}

func (b *binding) setTarget(p Provider, singleton bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.provider = p
	b.singleton = b.singleton || singleton
}

func (b *binding) resolve(r Resolver) (any, error) {
	provider, singleton := b.target()
	if provider == nil {
		return nil, fmt.Errorf("binding for %v has no target", b.id)
	}
	if !singleton {
		return provider(r)
	}
	b.once.Do(func() {
		b.value, b.err = provider(r)
	})
	return b.value, b.err
}

// BindingSyntax configures the binding returned by Bind.
type BindingSyntax struct {
	b *binding
}

// To sets a provider that builds a new instance on every resolution unless
// InSingletonScope is also called.
func (s *BindingSyntax) To(p Provider) *BindingSyntax {
	s.b.setTarget(p, false)
	return s
}

// ToConstant binds a fixed value.
func (s *BindingSyntax) ToConstant(v any) *BindingSyntax {
	s.b.setTarget(func(Resolver) (any, error) { return v, nil }, true)
	return s
}

// ToFactory binds the function value fn returns. The returned function is
// what resolvers receive, so callers can build instances on demand with
// arguments of their own.
func (s *BindingSyntax) ToFactory(fn func(r Resolver) any) *BindingSyntax {
	s.b.setTarget(func(r Resolver) (any, error) { return fn(r), nil }, false)
	return s
}

// InSingletonScope caches the first resolved instance (or error).
func (s *BindingSyntax) InSingletonScope() *BindingSyntax {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.singleton = true
	return s
}
