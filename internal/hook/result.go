package hook

import (
	"context"
	"errors"
	"fmt"
)

// Mode tells a hook which kind of pipe run invoked it.
type Mode int

const (
	ModeFilter Mode = iota + 1
	ModeResultset
)

func (m Mode) String() string {
	switch m {
	case ModeFilter:
		return "filter"
	case ModeResultset:
		return "resultset"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Result is the outcome reported by a single hook.
type Result struct {
	success bool
	value   any
}

// Accepted reports success without a value.
func Accepted() Result {
	return Result{success: true}
}

// AcceptedWith reports success carrying a value.
func AcceptedWith(v any) Result {
	return Result{success: true, value: v}
}

// Rejected reports failure. v usually explains why.
func Rejected(v any) Result {
	return Result{value: v}
}

// Success reports whether the hook accepted.
func (r Result) Success() bool { return r.success }

// Value returns the value attached to the result, if any.
func (r Result) Value() any { return r.value }

// Hook is a single pipe member.
type Hook func(ctx context.Context, mode Mode, args ...any) (Result, error)

// Handler is implemented by bound values that act as hooks.
type Handler interface {
	Handle(ctx context.Context, mode Mode, args ...any) (Result, error)
}

// ErrNoResult is the rejection value of a deferred hook whose channel closed
// without delivering a result.
var ErrNoResult = errors.New("deferred hook produced no result")

// Predicate adapts a boolean check into a Hook: true accepts, false rejects.
func Predicate(fn func(ctx context.Context, mode Mode, args ...any) bool) Hook {
	return func(ctx context.Context, mode Mode, args ...any) (Result, error) {
		if fn(ctx, mode, args...) {
			return Accepted(), nil
		}
		return Rejected(nil), nil
	}
}

// Deferred adapts a hook that produces its result asynchronously. The pipe
// waits for the first value on the channel, whatever the state of ctx. A
// hook that wants to give up on cancellation delivers its own rejection.
func Deferred(fn func(ctx context.Context, mode Mode, args ...any) <-chan Result) Hook {
	return func(ctx context.Context, mode Mode, args ...any) (Result, error) {
		r, ok := <-fn(ctx, mode, args...)
		if !ok {
			return Rejected(ErrNoResult), nil
		}
		return r, nil
	}
}
