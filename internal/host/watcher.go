package host

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher publishes a RegistryChangedEvent on the bus after each debounced
// change of the registry file. The parent directory is watched, since
// editors and WriteFile replace the file instead of writing it in place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	bus      *event.Bus
	logger   *logging.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a Watcher for path. A debounce <= 0 uses
// DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, bus *event.Bus, logger *logging.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		bus:      bus,
		logger:   logger.WithComponent("watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) watchLoop() {
	timer := time.NewTimer(0)
	<-timer.C
	pending := false

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.fire()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

func (w *Watcher) fire() {
	w.logger.Debug("registry changed", "path", w.path)
	w.bus.Publish(event.NewRegistryChangedEvent(w.path))
}
