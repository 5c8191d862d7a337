package daemon

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scrapekit-ai/scrapekit/internal/logging"
)

// debounceDelay batches the burst of filesystem events an editor save
// produces into a single change notification.
const debounceDelay = 500 * time.Millisecond

// ConfigWatcher watches a config file and reports debounced changes.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	changed chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}

	mu      sync.Mutex
	pending *time.Timer
}

// WatchConfig watches the config file for writes. Editors typically
// replace the file rather than write it in place, so the parent
// directory is watched and events filtered by name.
func WatchConfig(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		watcher: w,
		path:    abs,
		changed: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go cw.run()

	logging.Debug().Str("config", abs).Msg("config watcher started")
	return cw, nil
}

// Changed delivers one notification per debounced burst of writes.
func (w *ConfigWatcher) Changed() <-chan struct{} {
	return w.changed
}

func (w *ConfigWatcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.bump()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("config watcher error")
		}
	}
}

// bump starts or extends the debounce window.
func (w *ConfigWatcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Reset(debounceDelay)
		return
	}
	w.pending = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()
		select {
		case w.changed <- struct{}{}:
		default:
		}
	})
}

// Stop ends the watch and releases the underlying watcher.
func (w *ConfigWatcher) Stop() error {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.doneCh

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()

	return w.watcher.Close()
}
