package hook

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/componentry/internal/ctxlog"
)

// Execution records one hook invocation inside a Summary.
type Execution struct {
	// Index is the hook position inside the pipe.
	Index  int
	Hook   Hook
	Result any
}

// Summary is the aggregate outcome of a pipe run.
type Summary struct {
	Success         bool
	SuccessfulHooks []Execution
	FailedHooks     []Execution
	Arguments       []any
}

// Pipe is an immutable, ordered hook chain with captured arguments.
type Pipe struct {
	hooks []Hook
	args  []any
}

// NewPipe builds a pipe over a copy of hooks.
func NewPipe(hooks []Hook, args ...any) *Pipe {
	return &Pipe{hooks: slices.Clone(hooks), args: slices.Clone(args)}
}

// WithArguments returns a new pipe over the same hooks with different
// arguments. The receiver is left untouched.
func (p *Pipe) WithArguments(args ...any) *Pipe {
	return &Pipe{hooks: p.hooks, args: slices.Clone(args)}
}

// Arguments returns a copy of the captured arguments.
func (p *Pipe) Arguments() []any {
	return slices.Clone(p.args)
}

// Hooks returns a copy of the hook sequence.
func (p *Pipe) Hooks() []Hook {
	return slices.Clone(p.hooks)
}

// Len returns the number of hooks.
func (p *Pipe) Len() int {
	return len(p.hooks)
}

// RunAsFilter runs hooks in order until one rejects.
func (p *Pipe) RunAsFilter(ctx context.Context) Summary {
	return p.run(ctx, ModeFilter, true)
}

// RunWithResultset runs every hook and partitions the outcomes.
func (p *Pipe) RunWithResultset(ctx context.Context) Summary {
	return p.run(ctx, ModeResultset, false)
}

// FilterAsync starts RunAsFilter in the background. The channel receives
// exactly one Summary.
func (p *Pipe) FilterAsync(ctx context.Context) <-chan Summary {
	return p.async(func() Summary { return p.RunAsFilter(ctx) })
}

// ResultsetAsync starts RunWithResultset in the background. The channel
// receives exactly one Summary.
func (p *Pipe) ResultsetAsync(ctx context.Context) <-chan Summary {
	return p.async(func() Summary { return p.RunWithResultset(ctx) })
}

func (p *Pipe) async(run func() Summary) <-chan Summary {
	out := make(chan Summary, 1)
	go func() {
		out <- run()
	}()
	return out
}

func (p *Pipe) run(ctx context.Context, mode Mode, stopOnFailure bool) Summary {
	logger := ctxlog.FromContext(ctx)
	summary := Summary{Arguments: p.Arguments()}

	for i, h := range p.hooks {
		r := p.invoke(ctx, h, mode)
		exec := Execution{Index: i, Hook: h, Result: r.value}
		if r.success {
			summary.SuccessfulHooks = append(summary.SuccessfulHooks, exec)
			continue
		}
		summary.FailedHooks = append(summary.FailedHooks, exec)
		if stopOnFailure {
			logger.Debug("Hook rejected, stopping filter pipe.", "index", i, "remaining", len(p.hooks)-i-1)
			break
		}
	}

	summary.Success = len(summary.FailedHooks) == 0
	logger.Debug("Hook pipe finished.",
		"mode", mode.String(),
		"hooks", len(p.hooks),
		"successful", len(summary.SuccessfulHooks),
		"failed", len(summary.FailedHooks),
	)
	return summary
}

// invoke runs one hook, converting errors and panics into rejections.
func (p *Pipe) invoke(ctx context.Context, h Hook, mode Mode) (r Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Rejected(rec)
		}
	}()

	if h == nil {
		return Rejected(fmt.Errorf("nil hook"))
	}
	res, err := h(ctx, mode, p.args...)
	if err != nil {
		return Rejected(err)
	}
	return res
}
