package bus

import (
	"context"

	"github.com/vk/componentry/internal/token"
	"go.uber.org/multierr"
)

// Layered is a scope-local bus that forwards every emitted message to a
// shared root bus after its own dispatch.
type Layered struct {
	local Bus
	root  MessageBus
}

// NewLayered returns a local bus forwarding to root.
func NewLayered(root MessageBus) *Layered {
	return &Layered{root: root}
}

// On subscribes on the local bus only.
func (l *Layered) On(t token.Token, h Handler) {
	l.local.On(t, h)
}

// Emit runs local handlers first, then hands the message to the root.
func (l *Layered) Emit(ctx context.Context, m Message) error {
	err := l.local.Emit(ctx, m)
	return multierr.Append(err, l.root.Emit(ctx, m))
}

// Root returns the bus messages are forwarded to.
func (l *Layered) Root() MessageBus {
	return l.root
}
