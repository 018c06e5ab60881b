package journal

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/componentry/internal/bus"
	"github.com/vk/componentry/internal/container"
	"github.com/vk/componentry/internal/registry"
	"github.com/vk/componentry/modules/core"
)

func bindJournal(t *testing.T, config map[string]any) (*container.Container, error) {
	t.Helper()
	r := registry.New(nil)
	require.NoError(t, core.New(&bytes.Buffer{}).Register(r))
	require.NoError(t, (&Module{}).Register(r))
	comp, err := r.Lookup(Name)
	require.NoError(t, err)
	comp.Configure(config)

	c := container.New()
	return c, r.Autobind(context.Background(), c, nil, registry.ScopeRoot)
}

func TestModule_DisabledWithoutPath(t *testing.T) {
	t.Parallel()

	c, err := bindJournal(t, nil)
	require.NoError(t, err)

	assert.False(t, c.IsBound(StoreService))
	assert.False(t, c.IsBound(core.Shutdown))
}

func TestModule_RecordsConfiguredTokens(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c, err := bindJournal(t, map[string]any{
		"path":   filepath.Join(t.TempDir(), "journal.db"),
		"tokens": []any{"core/lifecycle", "core/configuration-changed"},
	})
	require.NoError(t, err)
	store, err := Lookup(c)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	root, err := core.RootBus(c)
	require.NoError(t, err)
	ctx := context.Background()
	var announced []any
	root.On(Recorded, func(_ context.Context, m bus.Message) error {
		announced = append(announced, m.Payload["interface"])
		return nil
	})

	// --- Act ---
	require.NoError(t, root.Emit(ctx, bus.Message{ComponentInterface: core.Lifecycle, Payload: map[string]any{"phase": "started"}}))
	require.NoError(t, root.Emit(ctx, bus.Message{ComponentInterface: core.ConfigurationChanged, Payload: map[string]any{"files": 1}}))
	require.NoError(t, root.Emit(ctx, bus.Message{ComponentInterface: core.Main, Payload: map[string]any{"ignored": true}}))

	// --- Assert ---
	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "core/configuration-changed", entries[0].Interface)
	assert.Equal(t, map[string]any{"files": float64(1)}, entries[0].Payload)
	assert.Equal(t, "core/lifecycle", entries[1].Interface)
	assert.Equal(t, []any{"core/lifecycle", "core/configuration-changed"}, announced)

	closers, err := container.ResolveAll[*Store](c, core.Shutdown)
	require.NoError(t, err)
	assert.Equal(t, []*Store{store}, closers)
}

func TestModule_InvalidTokenReference(t *testing.T) {
	t.Parallel()

	_, err := bindJournal(t, map[string]any{
		"path":   filepath.Join(t.TempDir(), "journal.db"),
		"tokens": []any{"core/no-such-interface"},
	})

	var setupErr *registry.BindingSetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, Name, setupErr.Component)
	assert.ErrorContains(t, err, "no-such-interface")
}

func TestModule_RecordedMessagesAreNotJournaled(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c, err := bindJournal(t, map[string]any{
		"path":   filepath.Join(t.TempDir(), "journal.db"),
		"tokens": []any{"core/lifecycle", "journal/recorded"},
	})
	require.NoError(t, err)
	store, err := Lookup(c)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	root, err := core.RootBus(c)
	require.NoError(t, err)
	ctx := context.Background()

	// --- Act ---
	require.NoError(t, root.Emit(ctx, bus.Message{ComponentInterface: core.Lifecycle, Payload: map[string]any{"phase": "started"}}))

	// --- Assert ---
	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "core/lifecycle", entries[0].Interface)
}
