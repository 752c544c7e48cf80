package deck

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Garsondee/kimcard/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// ErrWatcherClosed is returned by Start once Stop has released the watcher.
var ErrWatcherClosed = errors.New("deck: watcher closed")

// Watcher reloads a deck file when it changes on disk. The file's
// directory is watched rather than the file itself so that editors which
// save by rename keep working.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload func(*Deck)
	log      *zap.Logger

	pending time.Time // zero when nothing is pending
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	closed  bool

	reloads int
	errors  int
}

// NewWatcher prepares a watcher for path. onReload receives every deck that
// loads successfully; it runs on the watcher goroutine.
func NewWatcher(path string, onReload func(*Deck), log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("deck: watch %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Watcher{
		watcher:  fw,
		path:     filepath.Clean(abs),
		debounce: DefaultDebounce,
		onReload: onReload,
		log:      logging.OrNop(log).With(zap.String("deck", path)),
	}, nil
}

// Start begins watching. It does not block. Starting a running watcher is a
// no-op; starting a stopped one returns ErrWatcherClosed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrWatcherClosed
	case w.running:
		return nil
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("deck: watch %s: %w", w.path, err)
	}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	w.log.Debug("watching deck")
	go w.run(ctx, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the watch loop and releases the fsnotify watcher. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running, stopCh, doneCh := w.running, w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	if running {
		close(stopCh)
		<-doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing watcher", zap.Error(err))
	}
}

// Stats returns how many reloads succeeded and failed.
func (w *Watcher) Stats() (reloads, failures int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.errors
}

func (w *Watcher) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.log.Debug("deck changed", zap.Stringer("op", ev.Op))
	w.mu.Lock()
	w.pending = time.Now().Add(w.debounce)
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	due := !w.pending.IsZero() && !now.Before(w.pending)
	if due {
		w.pending = time.Time{}
	}
	w.mu.Unlock()
	if !due {
		return
	}

	d, err := Load(w.path)
	w.mu.Lock()
	if err != nil {
		w.errors++
	} else {
		w.reloads++
	}
	w.mu.Unlock()
	if err != nil {
		w.log.Warn("deck reload failed, keeping previous deck", zap.Error(err))
		return
	}
	w.log.Info("deck reloaded", zap.Int("cards", len(d.Cards)))
	if w.onReload != nil {
		w.onReload(d)
	}
}
