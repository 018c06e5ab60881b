package hook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder builds hooks that remember every invocation.
type recorder struct {
	calls []string
	args  [][]any
	modes []Mode
}

func (r *recorder) hook(name string, accept bool) Hook {
	return func(ctx context.Context, mode Mode, args ...any) (Result, error) {
		r.calls = append(r.calls, name)
		r.args = append(r.args, args)
		r.modes = append(r.modes, mode)
		if accept {
			return AcceptedWith(name), nil
		}
		return Rejected(name + " says no"), nil
	}
}

func indexes(execs []Execution) []int {
	out := make([]int, 0, len(execs))
	for _, e := range execs {
		out = append(out, e.Index)
	}
	return out
}

func TestPipe_FilterStopsAtFirstRejection(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	p := NewPipe([]Hook{
		rec.hook("H1", true),
		rec.hook("H2", false),
		rec.hook("H3", true),
	}, "a", "b")

	// --- Act ---
	summary := p.RunAsFilter(context.Background())

	// --- Assert ---
	assert.Equal(t, []string{"H1", "H2"}, rec.calls, "H3 must never run")
	assert.False(t, summary.Success)
	assert.Equal(t, []int{0}, indexes(summary.SuccessfulHooks))
	assert.Equal(t, []int{1}, indexes(summary.FailedHooks))
	assert.Equal(t, "H2 says no", summary.FailedHooks[0].Result)
	assert.Equal(t, []any{"a", "b"}, summary.Arguments)
	assert.Equal(t, []any{"a", "b"}, rec.args[0])
	assert.Equal(t, []Mode{ModeFilter, ModeFilter}, rec.modes)
}

func TestPipe_ResultsetRunsEverything(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewPipe([]Hook{
		rec.hook("H1", true),
		rec.hook("H2", false),
		rec.hook("H3", true),
	}, "a", "b")

	summary := p.RunWithResultset(context.Background())

	assert.Equal(t, []string{"H1", "H2", "H3"}, rec.calls)
	assert.False(t, summary.Success)
	assert.Equal(t, []int{0, 2}, indexes(summary.SuccessfulHooks))
	assert.Equal(t, []int{1}, indexes(summary.FailedHooks))
	assert.Equal(t, "H3", summary.SuccessfulHooks[1].Result)
	assert.Equal(t, []Mode{ModeResultset, ModeResultset, ModeResultset}, rec.modes)
}

func TestPipe_AllAccepted(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewPipe([]Hook{rec.hook("H1", true), rec.hook("H2", true)})

	for _, summary := range []Summary{p.RunAsFilter(context.Background()), p.RunWithResultset(context.Background())} {
		assert.True(t, summary.Success)
		assert.Empty(t, summary.FailedHooks)
		assert.Len(t, summary.SuccessfulHooks, 2)
	}
}

func TestPipe_EmptyPipeSucceeds(t *testing.T) {
	t.Parallel()

	summary := NewPipe(nil).RunAsFilter(context.Background())
	assert.True(t, summary.Success)
	assert.Empty(t, summary.SuccessfulHooks)
	assert.Empty(t, summary.FailedHooks)
}

func TestPipe_WithArgumentsDoesNotMutate(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	original := NewPipe([]Hook{rec.hook("H1", true)}, "first")

	derived := original.WithArguments("second", 2)

	assert.Equal(t, []any{"first"}, original.Arguments())
	assert.Equal(t, []any{"second", 2}, derived.Arguments())
	assert.Equal(t, original.Len(), derived.Len())

	original.RunAsFilter(context.Background())
	derived.RunAsFilter(context.Background())
	original.RunWithResultset(context.Background())

	require.Len(t, rec.args, 3)
	assert.Equal(t, []any{"first"}, rec.args[0])
	assert.Equal(t, []any{"second", 2}, rec.args[1])
	assert.Equal(t, []any{"first"}, rec.args[2])
}

func TestPipe_ErrorsAndPanicsAreRejections(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var ran []string
	hooks := []Hook{
		func(context.Context, Mode, ...any) (Result, error) {
			ran = append(ran, "err")
			return Accepted(), boom
		},
		func(context.Context, Mode, ...any) (Result, error) {
			ran = append(ran, "panic")
			panic("kaput")
		},
		func(context.Context, Mode, ...any) (Result, error) {
			ran = append(ran, "ok")
			return Accepted(), nil
		},
	}

	t.Run("filter short-circuits on error", func(t *testing.T) {
		ran = nil
		summary := NewPipe(hooks).RunAsFilter(context.Background())
		assert.Equal(t, []string{"err"}, ran)
		require.Len(t, summary.FailedHooks, 1)
		assert.Equal(t, boom, summary.FailedHooks[0].Result)
	})

	t.Run("resultset keeps going", func(t *testing.T) {
		ran = nil
		summary := NewPipe(hooks).RunWithResultset(context.Background())
		assert.Equal(t, []string{"err", "panic", "ok"}, ran)
		assert.Equal(t, []int{0, 1}, indexes(summary.FailedHooks))
		assert.Equal(t, "kaput", summary.FailedHooks[1].Result)
		assert.Equal(t, []int{2}, indexes(summary.SuccessfulHooks))
	})
}

func TestPipe_NilHookIsRejected(t *testing.T) {
	t.Parallel()

	summary := NewPipe([]Hook{nil}).RunWithResultset(context.Background())
	require.Len(t, summary.FailedHooks, 1)
	assert.ErrorContains(t, summary.FailedHooks[0].Result.(error), "nil hook")
}

func TestPredicate_NormalisesBooleans(t *testing.T) {
	t.Parallel()

	yes := Predicate(func(context.Context, Mode, ...any) bool { return true })
	no := Predicate(func(context.Context, Mode, ...any) bool { return false })

	summary := NewPipe([]Hook{yes, no, yes}).RunWithResultset(context.Background())
	assert.Equal(t, []int{0, 2}, indexes(summary.SuccessfulHooks))
	assert.Equal(t, []int{1}, indexes(summary.FailedHooks))
	assert.Nil(t, summary.FailedHooks[0].Result)
}

func TestDeferred_HooksRunSequentially(t *testing.T) {
	t.Parallel()

	var order []int
	slow := func(i int, delay time.Duration) Hook {
		return Deferred(func(ctx context.Context, mode Mode, args ...any) <-chan Result {
			out := make(chan Result, 1)
			go func() {
				time.Sleep(delay)
				order = append(order, i)
				out <- Accepted()
			}()
			return out
		})
	}

	// The first hook is the slowest; it must still complete first.
	summary := NewPipe([]Hook{slow(0, 30*time.Millisecond), slow(1, 0), slow(2, 10*time.Millisecond)}).
		RunAsFilter(context.Background())

	assert.True(t, summary.Success)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestDeferred_ClosedChannelRejects(t *testing.T) {
	t.Parallel()

	closed := Deferred(func(context.Context, Mode, ...any) <-chan Result {
		out := make(chan Result)
		close(out)
		return out
	})

	summary := NewPipe([]Hook{closed}).RunWithResultset(context.Background())
	require.Len(t, summary.FailedHooks, 1)
	assert.Equal(t, ErrNoResult, summary.FailedHooks[0].Result)
}

func TestDeferred_CancelledContextDoesNotStopFilter(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	late := func(v string) Hook {
		return Deferred(func(context.Context, Mode, ...any) <-chan Result {
			out := make(chan Result, 1)
			go func() {
				time.Sleep(5 * time.Millisecond)
				out <- AcceptedWith(v)
			}()
			return out
		})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	summary := NewPipe([]Hook{late("first"), late("second")}).RunAsFilter(ctx)

	// --- Assert ---
	assert.True(t, summary.Success)
	assert.Equal(t, []int{0, 1}, indexes(summary.SuccessfulHooks))
	assert.Equal(t, "second", summary.SuccessfulHooks[1].Result)
}

func TestPipe_AsyncRuns(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := NewPipe([]Hook{rec.hook("H1", true), rec.hook("H2", false), rec.hook("H3", true)})

	select {
	case summary := <-p.FilterAsync(context.Background()):
		assert.Equal(t, []int{1}, indexes(summary.FailedHooks))
	case <-time.After(time.Second):
		t.Fatal("filter summary was never delivered")
	}

	select {
	case summary := <-p.ResultsetAsync(context.Background()):
		assert.Equal(t, []int{0, 2}, indexes(summary.SuccessfulHooks))
	case <-time.After(time.Second):
		t.Fatal("resultset summary was never delivered")
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "filter", ModeFilter.String())
	assert.Equal(t, "resultset", ModeResultset.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}
