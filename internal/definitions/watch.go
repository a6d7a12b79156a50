package definitions

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// DefaultDebounce is how long the watcher waits for edits to settle
const DefaultDebounce = 250 * time.Millisecond

// WatcherConfig configures a Watcher
type WatcherConfig struct {
	Dir      string
	Debounce time.Duration
	// OnChange receives the changed files once edits have settled
	OnChange func(ctx context.Context, files []string)
}

// Validate validates the config
func (c *WatcherConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Dir", c.Dir, vb)
	if c.OnChange == nil {
		vb.RequiredField("OnChange")
	}
	if c.Debounce < 0 {
		vb.Field("Debounce", "must not be negative")
	}
	return vb.Build()
}

// Watcher reports settled edits to definition files
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(ctx context.Context, files []string)
}

// NewWatcher watches Dir and each of its definition subdirectories that exist
func NewWatcher(cfg *WatcherConfig) (*Watcher, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid watcher config")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to create file watcher")
	}

	dirs := []string{cfg.Dir}
	for _, sub := range []string{TemplatesDir, LootDir, ShapesDir} {
		dir := filepath.Join(cfg.Dir, sub)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		onChange: cfg.OnChange,
	}, nil
}

// Run delivers change batches until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.watchNewDir(event.Name)
			}
			if !IsDefinitionFile(event.Name) {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[event.Name] = struct{}{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("definitions watcher error", "error", err)

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			clear(pending)
			w.onChange(ctx, files)
		}
	}
}

// watchNewDir picks up a definition subdirectory created after startup
func (w *Watcher) watchNewDir(path string) {
	switch filepath.Base(path) {
	case TemplatesDir, LootDir, ShapesDir:
	default:
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		slog.Warn("failed to watch new definitions directory", "dir", path, "error", err)
	}
}
