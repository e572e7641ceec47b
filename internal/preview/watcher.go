package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/livedoc/internal/logfields"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// Debounce coalesces bursts of filesystem events.
	Debounce time.Duration

	// PollInterval switches from fsnotify to polling the file's size and
	// modification time. Zero uses fsnotify.
	PollInterval time.Duration
}

// Watcher reports changes of one file on Changes. Bursts collapse into a
// single pending notification.
type Watcher struct {
	path    string
	opts    WatchOptions
	changes chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, opts WatchOptions) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}
	return &Watcher{path: abs, opts: opts, changes: make(chan struct{}, 1)}, nil
}

// Changes delivers one value per (debounced) change.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	if w.opts.PollInterval > 0 {
		return w.poll(ctx)
	}
	return w.watch(ctx)
}

func (w *Watcher) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so the directory is watched.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.Info("Watching document", logfields.Path(w.path))

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Document change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			w.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	last := w.stat()
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.PollInterval),
		gocron.NewTask(func() {
			if cur := w.stat(); cur != last {
				last = cur
				slog.Debug("Document change detected by poll", logfields.Path(w.path))
				w.trigger()
			}
		}),
		gocron.WithName("document-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create poll job: %w", err)
	}

	slog.Info("Polling document", logfields.Path(w.path), slog.Duration("interval", w.opts.PollInterval))
	s.Start()
	<-ctx.Done()
	return s.Shutdown()
}

type fileStamp struct {
	size    int64
	modTime int64 // UnixNano
	missing bool
}

func (w *Watcher) stat() fileStamp {
	fi, err := os.Stat(w.path)
	if err != nil {
		return fileStamp{missing: true}
	}
	return fileStamp{size: fi.Size(), modTime: fi.ModTime().UnixNano()}
}

func (w *Watcher) trigger() {
	if w.opts.Debounce <= 0 {
		w.notify()
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.notify)
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
