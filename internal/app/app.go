package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"sync"

	"github.com/vk/componentry/internal/config"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	loader    config.Loader
	registry  *registry.Registry
	container *container.Container
	environ   func() []string

	mu    sync.Mutex
	model *config.Model

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It registers the
// core component followed by modules (or the default modules when none are
// given), loads and applies configuration, and runs the root scope of every
// component not excluded. Any failure is a startup error and panics; the
// caller is expected to recover.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(logger)
	if len(modules) == 0 {
		modules = defaultModules()
	}
	modules = append([]registry.Module{core.New(outW)}, modules...)
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			panic(fmt.Errorf("failed to register module %T: %w", mod, err))
		}
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "components", reg.Names())

	if err := reg.Validate(); err != nil {
		panic(err)
	}

	a := &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		loader:    loader,
		registry:  reg,
		container: container.New(),
		environ:   os.Environ,
	}

	model, err := a.loadModel(ctx)
	if err != nil {
		panic(err)
	}
	a.applyModel(ctx, model)

	except := reg.ExpandExcept(ctx, slices.Concat(appConfig.Except, model.App.Except))
	if err := reg.Autobind(ctx, a.container, except, registry.ScopeRoot); err != nil {
		panic(err)
	}
	logger.Debug("Root scope bound.", "except", except)

	return a
}

// loadModel reads the configuration files (if any), overlays environment
// overrides and rejects configuration for unknown components.
func (a *App) loadModel(ctx context.Context) (*config.Model, error) {
	model := config.NewModel()
	if len(a.config.ConfigPaths) > 0 {
		if a.loader == nil {
			return nil, fmt.Errorf("configuration paths given but no loader configured")
		}
		loaded, err := a.loader.Load(ctx, a.config.ConfigPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = loaded
	}
	if n := model.ApplyEnv(a.registry.Names(), a.environ()); n > 0 {
		a.logger.Debug("Environment overrides applied.", "count", n)
	}
	if err := model.CheckKnown(a.registry.IsRegistered); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return model, nil
}

// applyModel merges the configured attributes over each component's
// current configuration.
func (a *App) applyModel(ctx context.Context, model *config.Model) {
	logger := ctxlog.FromContext(ctx)
	for _, name := range model.Names() {
		comp, err := a.registry.Lookup(name)
		if err != nil {
			continue
		}
		comp.Configure(model.Component(name))
		logger.Debug("Component configured.", "component", name)
	}

	a.mu.Lock()
	a.model = model
	a.mu.Unlock()
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Container returns the application's injection container.
func (a *App) Container() *container.Container {
	return a.container
}

// Model returns the configuration model currently in effect.
func (a *App) Model() *config.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}
