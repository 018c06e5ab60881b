package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/componentry/internal/app"
	"github.com/vk/componentry/internal/config"
	"github.com/vk/componentry/internal/hcl"
	"github.com/vk/componentry/internal/registry"
)

// Harness is a test application together with its captured output.
type Harness struct {
	App *app.App
	// Output receives both the app's log lines and what components print.
	Output *SafeBuffer
	// Dir holds the configuration files written for the test, if any.
	Dir string
}

// WriteFiles writes files (relative path → content) into a fresh temporary
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// NewHarness builds an App with debug logging. When files is non-empty they
// are written to a temporary directory used as the only configuration
// path. A startup panic is returned as an error.
func NewHarness(t *testing.T, cfg app.Config, files map[string]string, modules ...registry.Module) (*Harness, error) {
	t.Helper()

	h := &Harness{Output: &SafeBuffer{}}
	if len(files) > 0 {
		h.Dir = WriteFiles(t, files)
		cfg.ConfigPaths = []string{h.Dir}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	t.Cleanup(func() {
		if os.Getenv("COMPONENTRY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), h.Output.String())
		}
	})

	var panicErr any
	func() {
		defer func() {
			panicErr = recover()
		}()
		h.App = app.NewApp(h.Output, &cfg, hcl.NewLoader(), modules...)
	}()
	if panicErr != nil {
		return h, fmt.Errorf("application startup panicked | %v", panicErr)
	}
	return h, nil
}

// MustHarness is NewHarness failing the test on a startup error.
func MustHarness(t *testing.T, cfg app.Config, files map[string]string, modules ...registry.Module) *Harness {
	t.Helper()
	h, err := NewHarness(t, cfg, files, modules...)
	require.NoError(t, err)
	return h
}

// LoadHCL decodes an in-memory HCL document into a configuration model.
func LoadHCL(src string) (*config.Model, error) {
	return hcl.NewLoader().LoadSource([]byte(src), "test.hcl")
}
