package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/hcl"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrStartupVetoed is returned by Run when a before-run hook rejects.
var ErrStartupVetoed = errors.New("startup vetoed")

// Run executes the application: it lets before-run hooks veto the start,
// announces the lifecycle, runs every executable bound to core/main
// concurrently and, when serving (health check or watch enabled), waits for
// ctx to be cancelled. Closers bound to core/shutdown are closed on the way
// out.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		err = multierr.Append(err, a.shutdown(ctx))
	}()

	if err := a.checkBeforeRun(ctx); err != nil {
		return err
	}

	root, err := core.RootBus(a.container)
	if err != nil {
		return fmt.Errorf("core component is not bound: %w", err)
	}

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
	}
	if a.config.Watch {
		w := hcl.NewWatcher(a.loader, a.config.ConfigPaths, a.Reload)
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Close()
	}

	a.emitLifecycle(ctx, root, "started")
	a.logger.Info("🚀 Application started.", "components", len(a.registry.Names()))

	runErr := a.runExecutables(ctx)
	if runErr == nil && a.config.serves() {
		a.logger.Info("Serving until interrupted.")
		<-ctx.Done()
	}

	a.emitLifecycle(context.WithoutCancel(ctx), root, "stopped")
	a.logger.Info("🏁 Application stopped.")
	return runErr
}

// checkBeforeRun filter-executes the before-run pipe. The first rejecting
// hook aborts the start.
func (a *App) checkBeforeRun(ctx context.Context) error {
	pipes, err := core.Pipes(a.container)
	if err != nil {
		return fmt.Errorf("core component is not bound: %w", err)
	}
	pipe, err := pipes.Pipe(core.BeforeRun)
	if err != nil {
		return err
	}

	model := a.Model()
	info := core.RunInfo{
		Components:  a.registry.Names(),
		ConfigFiles: model.Files,
		Except:      model.App.Except,
	}
	summary := pipe.WithArguments(info).RunAsFilter(ctx)
	for _, ok := range summary.SuccessfulHooks {
		a.logger.Debug("Before-run hook accepted.", "index", ok.Index, "value", ok.Result)
	}
	if !summary.Success {
		failed := summary.FailedHooks[0]
		return fmt.Errorf("%w: before-run hook %d rejected: %v", ErrStartupVetoed, failed.Index, failed.Result)
	}
	return nil
}

func (a *App) emitLifecycle(ctx context.Context, root bus.MessageBus, phase string) {
	err := root.Emit(ctx, bus.Message{
		ComponentInterface: core.Lifecycle,
		Payload:            map[string]any{"phase": phase},
	})
	if err != nil {
		a.logger.Warn("Lifecycle message handlers failed.", "phase", phase, "error", err)
	}
}

// runExecutables runs every executable bound to core/main. The first
// failure cancels the others and is returned.
func (a *App) runExecutables(ctx context.Context) error {
	if !a.container.IsBound(core.Main) {
		a.logger.Debug("No executables bound.")
		return nil
	}
	execs, err := container.ResolveAll[registry.Executable](a.container, core.Main)
	if err != nil {
		return fmt.Errorf("failed to resolve executables: %w", err)
	}

	a.logger.Debug("Running executables.", "count", len(execs))
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range execs {
		g.Go(func() error {
			return e.Execute(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

// shutdown stops the health check server and closes every closer bound to
// core/shutdown, in reverse binding order.
func (a *App) shutdown(ctx context.Context) error {
	errs := a.closeHealthcheckServer(ctx)

	if !a.container.IsBound(core.Shutdown) {
		return errs
	}
	closers, err := container.ResolveAll[io.Closer](a.container, core.Shutdown)
	if err != nil {
		return multierr.Append(errs, err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i].Close())
	}
	if errs != nil {
		a.logger.Warn("Shutdown finished with errors.", "error", errs)
	}
	return errs
}
