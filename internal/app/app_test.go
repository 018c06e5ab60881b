package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/componentry/internal/app"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/hook"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/internal/testutil"
	"github.com/vk/componentry/modules/console"
	"github.com/vk/componentry/modules/core"
)

func TestNewApp_RegistersCoreFirst(t *testing.T) {
	t.Parallel()

	h := testutil.MustHarness(t, app.Config{}, nil, testutil.NoOpModule())

	assert.Equal(t, []string{"core", "noop"}, h.App.Registry().Names())
	assert.True(t, h.App.Container().IsBound(registry.MetaInjectionName("core")))
	assert.True(t, h.App.Container().IsBound(registry.MetaInjectionName("noop")))
}

func TestNewApp_DefaultModules(t *testing.T) {
	t.Parallel()

	h := testutil.MustHarness(t, app.Config{}, nil)

	assert.Equal(t, []string{"core", "console", "journal", "bridge"}, h.App.Registry().Names())
}

func TestNewApp_AppliesFileConfiguration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
component "console" {
  prefix = "[cfg]"
}
`,
	}

	// --- Act ---
	h := testutil.MustHarness(t, app.Config{}, files, &console.Module{})

	// --- Assert ---
	comp, err := h.App.Registry().Lookup("console")
	require.NoError(t, err)
	assert.Equal(t, "[cfg]", comp.Configuration()["prefix"])
	assert.Len(t, h.App.Model().Files, 1)
}

func TestNewApp_EnvironmentOverridesFiles(t *testing.T) {
	t.Setenv("COMPONENTRY_CONSOLE__PREFIX", "[env]")

	files := map[string]string{"main.hcl": `component "console" { prefix = "[cfg]" }`}
	h := testutil.MustHarness(t, app.Config{}, files, &console.Module{})

	comp, err := h.App.Registry().Lookup("console")
	require.NoError(t, err)
	assert.Equal(t, "[env]", comp.Configuration()["prefix"])
}

func TestNewApp_StartupErrors(t *testing.T) {
	t.Parallel()

	failing := testutil.ModuleOf(registry.Descriptor{
		Name: "failing",
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: func(context.Context, *registry.Binder, registry.LookupService, *container.Container, ...any) error {
				return errors.New("cannot start")
			},
		},
	})

	testCases := []struct {
		name    string
		files   map[string]string
		modules []registry.Module
		wantErr string
	}{
		{
			name:    "unknown component",
			files:   map[string]string{"main.hcl": `component "ghost" {}`},
			modules: []registry.Module{testutil.NoOpModule()},
			wantErr: "configuration for unknown component 'ghost'",
		},
		{
			name:    "syntax error",
			files:   map[string]string{"main.hcl": `component "noop" {`},
			modules: []registry.Module{testutil.NoOpModule()},
			wantErr: "failed to parse",
		},
		{
			name:    "duplicate component",
			modules: []registry.Module{testutil.NoOpModule(), testutil.NoOpModule()},
			wantErr: "component already registered",
		},
		{
			name:    "failing root binding",
			modules: []registry.Module{failing},
			wantErr: "binding setup of component 'failing' for scope 'root' failed: cannot start",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := testutil.NewHarness(t, app.Config{}, tc.files, tc.modules...)
			require.Error(t, err)
			assert.ErrorContains(t, err, "application startup panicked")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewApp_ExceptSkipsRootBinding(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	bound := map[string]bool{}
	track := func(name string) registry.Module {
		return testutil.ModuleOf(registry.Descriptor{
			Name: name,
			Bindings: map[string]registry.BindingFunc{
				registry.ScopeRoot: func(context.Context, *registry.Binder, registry.LookupService, *container.Container, ...any) error {
					bound[name] = true
					return nil
				},
			},
		})
	}
	files := map[string]string{"main.hcl": `app { except = ["glob:experimental-*", "svc[1]"] }`}

	// --- Act ---
	testutil.MustHarness(t, app.Config{Except: []string{"legacy", "glob:[broken"}}, files,
		track("stable"), track("experimental-a"), track("legacy"), track("svc[1]"), track("svc1"))

	// --- Assert ---
	assert.Equal(t, map[string]bool{"stable": true, "svc1": true}, bound)
}

func TestRun_PrintsLifecycleAndRunsExecutables(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ran := make(chan string, 2)
	h := testutil.MustHarness(t, app.Config{LogLevel: "error"}, nil,
		&console.Module{},
		testutil.MainModule("worker-a", func(context.Context) error { ran <- "a"; return nil }),
		testutil.MainModule("worker-b", func(context.Context) error { ran <- "b"; return nil }),
	)

	// --- Act ---
	err := h.App.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	close(ran)
	var got []string
	for name := range ran {
		got = append(got, name)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, got)
	assert.Equal(t,
		"» core/lifecycle\n      phase = started\n» core/lifecycle\n      phase = stopped\n",
		h.Output.String())
}

func TestRun_ExecutableFailureCancelsOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	h := testutil.MustHarness(t, app.Config{}, nil,
		testutil.MainModule("failing", func(context.Context) error { return boom }),
		testutil.MainModule("waiting", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)

	err := h.App.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "execution failed")
}

func TestRun_BeforeRunVeto(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	executed := false
	closer := &testutil.Closer{}
	veto := testutil.ModuleOf(registry.Descriptor{
		Name: "gate",
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: func(_ context.Context, b *registry.Binder, _ registry.LookupService, _ *container.Container, _ ...any) error {
				b.BindExtension(core.BeforeRun).ToConstant(hook.Predicate(func(_ context.Context, _ hook.Mode, args ...any) bool {
					info := args[0].(core.RunInfo)
					return len(info.Components) > 10
				}))
				b.BindExtension(core.Shutdown).ToConstant(closer)
				return nil
			},
		},
	})
	h := testutil.MustHarness(t, app.Config{}, nil, veto,
		testutil.MainModule("worker", func(context.Context) error { executed = true; return nil }))

	// --- Act ---
	err := h.App.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, app.ErrStartupVetoed)
	assert.ErrorContains(t, err, "before-run hook 0 rejected")
	assert.False(t, executed)
	assert.Equal(t, 1, closer.Closed(), "shutdown closers run even when startup is vetoed")
}

func TestRun_ShutdownErrorsAreCombined(t *testing.T) {
	t.Parallel()

	first := &testutil.Closer{Err: errors.New("first close failed")}
	second := &testutil.Closer{Err: errors.New("second close failed")}
	closers := testutil.ModuleOf(registry.Descriptor{
		Name: "resources",
		Bindings: map[string]registry.BindingFunc{
			registry.ScopeRoot: func(_ context.Context, b *registry.Binder, _ registry.LookupService, _ *container.Container, _ ...any) error {
				b.BindExtension(core.Shutdown).ToConstant(first)
				b.BindExtension(core.Shutdown).ToConstant(second)
				return nil
			},
		},
	})
	h := testutil.MustHarness(t, app.Config{}, nil, closers)

	err := h.App.Run(context.Background())

	assert.ErrorContains(t, err, "first close failed")
	assert.ErrorContains(t, err, "second close failed")
	assert.Equal(t, 1, first.Closed())
	assert.Equal(t, 1, second.Closed())
}

func TestRun_HealthcheckStopsCleanlyWhenCancelledEarly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act & Assert ---
	// Shutdown regularly wins the race against the serving goroutine here.
	for range 50 {
		h := testutil.MustHarness(t, app.Config{HealthcheckPort: port}, nil, testutil.NoOpModule())
		require.NoError(t, h.App.Run(ctx))
	}
}

func TestReload_ReconfiguresAndAnnounces(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.MustHarness(t, app.Config{LogLevel: "error"}, nil, &console.Module{})
	model, err := testutil.LoadHCL(`component "console" { prefix = "#" }`)
	require.NoError(t, err)

	// --- Act ---
	h.App.Reload(context.Background(), model)

	// --- Assert ---
	comp, err := h.App.Registry().Lookup("console")
	require.NoError(t, err)
	assert.Equal(t, "#", comp.Configuration()["prefix"])
	assert.Same(t, model, h.App.Model())
	assert.Contains(t, h.Output.String(), "core/configuration-changed\n      components = [console]\n      files = 1\n")
}

func TestHandler_HealthAndComponents(t *testing.T) {
	t.Parallel()

	h := testutil.MustHarness(t, app.Config{}, nil, &console.Module{})
	srv := httptest.NewServer(h.App.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/components")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var views []struct {
		Name          string         `json:"name"`
		Interfaces    []string       `json:"interfaces"`
		Scopes        []string       `json:"scopes"`
		Configuration map[string]any `json:"configuration"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 2)
	assert.Equal(t, "core", views[0].Name)
	assert.Contains(t, views[0].Interfaces, "before-run")
	assert.Equal(t, "console", views[1].Name)
	assert.Equal(t, []string{"root"}, views[1].Scopes)
	assert.Equal(t, "»", views[1].Configuration["prefix"])
}
