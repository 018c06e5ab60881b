package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/componentry/internal/config"
	"github.com/vk/componentry/internal/ctxlog"
	"github.com/vk/componentry/internal/fsutil"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives every successfully reloaded model.
type ReloadFunc func(ctx context.Context, model *config.Model)

// Watcher reloads configuration when an .hcl file under the watched paths
// is written, created, removed or renamed. Failed reloads are logged and
// the previous configuration stays in effect.
type Watcher struct {
	loader   config.Loader
	paths    []string
	onReload ReloadFunc
	debounce time.Duration

	fsw  *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// NewWatcher creates a watcher; call Start to begin watching.
func NewWatcher(loader config.Loader, paths []string, onReload ReloadFunc) *Watcher {
	return &Watcher{
		loader:   loader,
		paths:    paths,
		onReload: onReload,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
}

// WithDebounce overrides the quiet period before a reload.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Start registers the watches and processes events in the background until
// ctx is cancelled or Close is called. Directories are watched together
// with their sub-directories; single files through their parent directory.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, dir := range watchDirs(w.paths) {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw

	go w.loop(ctx)
	return nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuration watcher started.", "paths", w.paths)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".hcl" || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Configuration file changed.", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Configuration watcher error.", "error", err)
		case <-timer.C:
			model, err := w.loader.Load(ctx, w.paths...)
			if err != nil {
				logger.Warn("Configuration reload failed, keeping previous configuration.", "error", err)
				continue
			}
			logger.Info("Configuration reloaded.", "files", len(model.Files))
			w.onReload(ctx, model)
		}
	}
}

// watchDirs returns the directories that must be watched for paths.
func watchDirs(paths []string) []string {
	var dirs []string
	seen := make(map[string]struct{})
	add := func(d string) {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dirs = append(dirs, d)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		for _, d := range fsutil.Dirs(p) {
			add(d)
		}
	}
	return dirs
}
