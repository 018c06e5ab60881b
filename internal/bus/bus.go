package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/token"
	"go.uber.org/multierr"
)

// Message is addressed to an interface token and carries a free-form payload.
type Message struct {
	ComponentInterface token.Token
	Payload            map[string]any
}

// Handler reacts to a message.
type Handler func(ctx context.Context, m Message) error

// MessageBus is implemented by Bus and Layered.
type MessageBus interface {
	On(t token.Token, h Handler)
	Emit(ctx context.Context, m Message) error
}

type subscription struct {
	token   token.Token
	handler Handler
}

// Bus is the base message bus. The zero value is ready to use.
type Bus struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// On subscribes h to messages addressed to t. Subscribing the same handler
// twice makes it run twice.
func (b *Bus) On(t token.Token, h Handler) {
	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, subscription{token: t, handler: h})
	b.mu.Unlock()
}

// Emit dispatches m to every handler subscribed to m.ComponentInterface.
// All matching handlers run even when some fail; the returned error
// combines every failure.
func (b *Bus) Emit(ctx context.Context, m Message) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subscriptions...)
	b.mu.RUnlock()

	logger := ctxlog.FromContext(ctx)
	var errs error
	delivered := 0
	for _, s := range subs {
		if s.token != m.ComponentInterface {
			continue
		}
		delivered++
		if err := deliver(ctx, s.handler, m); err != nil {
			logger.Warn("Message handler failed.", "interface", m.ComponentInterface.Label(), "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	logger.Debug("Message dispatched.", "interface", m.ComponentInterface.Label(), "handlers", delivered)
	return errs
}

// deliver isolates one handler invocation.
func deliver(ctx context.Context, h Handler, m Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, m)
}
