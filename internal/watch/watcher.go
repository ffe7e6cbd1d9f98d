// Package watch reloads a configuration store when its local properties file
// changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file by rename, and files created after startup, are
// both observed. Bursts of events are coalesced by a debounce window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eugenenazirov/termconf/internal/config"
)

const defaultDebounce = 250 * time.Millisecond

var (
	// ErrNotWatchable is returned for sources that are not local files.
	ErrNotWatchable = errors.New("configuration source is not a local file")
	// ErrAlreadyRunning is returned when Run is called more than once.
	ErrAlreadyRunning = errors.New("watcher already running")
)

// Reloader is the part of the store a Watcher drives.
type Reloader interface {
	Source() config.Source
	Reset()
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Debounce is the quiet period after the last event before reloading.
	// Zero or negative values fall back to defaultDebounce.
	Debounce time.Duration

	// Logger receives reload and error records. nil disables logging.
	Logger *zap.Logger

	// OnReload is called after each Reset. A nil callback is a no-op.
	OnReload func(ctx context.Context)
}

// Watcher resets a store after its configuration file changes.
type Watcher struct {
	store    Reloader
	cfg      Config
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
	dir      string
	file     string
	debounce time.Duration
	started  atomic.Bool
}

// New registers the directory of the store's current source with fsnotify.
func New(store Reloader, cfg Config) (*Watcher, error) {
	src := store.Source()
	if !src.Local() {
		return nil, fmt.Errorf("%w: %s", ErrNotWatchable, src)
	}

	path, err := filepath.Abs(src.Path())
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %q: %w", src.Path(), err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		fsw:      fsw,
		dir:      dir,
		file:     path,
		debounce: debounce,
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.file
}

// Run blocks until ctx is cancelled, resetting the store after each debounced
// change to the watched file. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu       sync.Mutex
		timer    *time.Timer
		stopped  bool
		inflight sync.WaitGroup
	)

	reload := func() {
		mu.Lock()
		if stopped || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		inflight.Add(1)
		mu.Unlock()
		defer inflight.Done()

		w.store.Reset()
		w.logger.Info("configuration reloaded", zap.String("path", w.file))
		if w.cfg.OnReload != nil {
			w.cfg.OnReload(ctx)
		}
	}

	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		// A reload that already started finishes before Run returns.
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify watcher", zap.Error(err))
		}
	}()

	w.logger.Info("watching configuration", zap.String("path", w.file), zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if filepath.Clean(evt.Name) != w.file {
				continue
			}
			w.logger.Debug("configuration file event",
				zap.String("path", evt.Name),
				zap.String("op", evt.Op.String()),
			)

			mu.Lock()
			if timer == nil {
				timer = time.AfterFunc(w.debounce, reload)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Warn("fsnotify error", zap.Error(err))
		}
	}
}
