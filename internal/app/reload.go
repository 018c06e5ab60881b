package app

import (
	"context"

	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/config"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/modules/core"
)

// Reload applies a freshly loaded configuration model and announces it on
// core/configuration-changed. Configuration for unknown components is
// logged and ignored; bindings are not re-run.
func (a *App) Reload(ctx context.Context, model *config.Model) {
	logger := ctxlog.FromContext(ctx)

	model.ApplyEnv(a.registry.Names(), a.environ())
	if err := model.CheckKnown(a.registry.IsRegistered); err != nil {
		logger.Warn("Reloaded configuration names unknown components.", "error", err)
	}
	a.applyModel(ctx, model)

	root, err := core.RootBus(a.container)
	if err != nil {
		logger.Warn("Cannot announce configuration change.", "error", err)
		return
	}
	err = root.Emit(ctx, bus.Message{
		ComponentInterface: core.ConfigurationChanged,
		Payload: map[string]any{
			"components": model.Names(),
			"files":      len(model.Files),
		},
	})
	if err != nil {
		logger.Warn("Configuration change handlers failed.", "error", err)
	}
}
