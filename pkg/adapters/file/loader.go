package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/htn/internal/compiler"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/schema"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Loader implements ports.TreeLoader, ports.Watchable and ports.SchemaSource
// for a YAML or JSON task tree document on disk.
type Loader struct {
	path     string
	actions  compiler.Actions
	logger   *slog.Logger
	debounce time.Duration

	mu     sync.Mutex
	schema schema.Schema
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithActions resolves "do" entries against the given registry.
func WithActions(a compiler.Actions) LoaderOption {
	return func(l *Loader) {
		l.actions = a
	}
}

// WithLogger sets the logger used while watching.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithDebounce sets how long Watch waits for the file to settle.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// NewLoader creates a loader for the document at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:     path,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the document location.
func (l *Loader) Path() string { return l.path }

// Load reads and compiles the document.
func (l *Loader) Load(ctx context.Context) (domain.Task, domain.State, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read task tree: %w", err)
	}
	doc, err := compiler.ParseYAML(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.path, err)
	}

	var opts []compiler.Option
	if l.actions != nil {
		opts = append(opts, compiler.WithActions(l.actions))
	}
	root, state, err := compiler.New(opts...).Compile(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.path, err)
	}
	sch, err := compiler.Schema(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.path, err)
	}

	l.mu.Lock()
	l.schema = sch
	l.mu.Unlock()
	return root, state, nil
}

// Schema returns the state schema of the last successfully loaded document.
func (l *Loader) Schema() schema.Schema {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema
}

// Watch signals on the returned channel whenever the document changes.
// The parent directory is watched so that editors which replace the file
// on save are still observed. The channel is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.path, err)
	}

	ch := make(chan struct{}, 1)
	target := filepath.Clean(l.path)

	go func() {
		var (
			mu     sync.Mutex
			timer  *time.Timer
			closed bool
		)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			closed = true
			close(ch)
			mu.Unlock()
			_ = watcher.Close()
		}()

		notify := func() {
			select {
			case ch <- struct{}{}:
			default: // a reload is already pending
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				l.logger.Debug("task tree changed", "path", l.path, "op", event.Op.String())

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(l.debounce, func() {
					mu.Lock()
					defer mu.Unlock()
					if !closed {
						notify()
					}
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("task tree watcher error", "path", l.path, "err", err)
			}
		}
	}()
	return ch, nil
}
