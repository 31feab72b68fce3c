package service

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long a file must stay quiet before a change
// is reported.
const DefaultWatchDebounce = 100 * time.Millisecond

// Watcher reports writes to a single transcript file. The parent directory is
// watched so editors that save by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher *fsnotify.Watcher
	changes chan string
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching path. Events are reported once the file has
// been quiet for debounce; zero uses DefaultWatchDebounce.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		changes:  make(chan string, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes emits the watched path once writes have stopped for the debounce
// interval. A burst of writes is one notification.
func (w *Watcher) Changes() <-chan string { return w.changes }

func (w *Watcher) Errors() <-chan error { return w.errors }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			select {
			case w.changes <- w.path:
			default: // one already queued
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	abs, err := filepath.Abs(ev.Name)
	if err != nil || abs != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}
