package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies registered callbacks when a watched file is written.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func()
}

// NewWatcher creates a Watcher backed by an OS-level file watch.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw}, nil
}

// OnChange registers fn to run whenever a watched file changes. Safe to
// call before or after Watch.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Watch adds path to the set of files being watched and starts the
// event loop on first call. The loop stops when ctx is canceled.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	if err := w.fsw.Add(path); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.notify()
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	callbacks := append([]func(){}, w.callbacks...)
	w.mu.Unlock()
	for _, cb := range callbacks {
		cb()
	}
}

// Close stops the underlying OS watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// watchFile is a one-shot convenience wrapper used by providers whose
// Watch method doesn't need to manage a Watcher's lifetime themselves.
func watchFile(ctx context.Context, path string, onChange func()) error {
	w, err := NewWatcher()
	if err != nil {
		return err
	}
	w.OnChange(onChange)
	if err := w.Watch(ctx, path); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return nil
}
