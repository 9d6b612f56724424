// Package watcher reloads a topology file when it changes on disk.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"netsketch/internal/logging"
)

// DefaultDebounce is how long the file must stay quiet before a reload
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func(path string) error
	debounce time.Duration
}

// New creates a new file watcher. onChange runs on the watcher goroutine;
// its error is logged and watching continues.
func New(path string, onChange func(path string) error) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch starts watching the file for changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	// Watch the directory so files replaced by editors are still seen
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	log := logging.WithOperation("watch").WithField("path", abs)
	log.Info("watching topology file for changes")

	var debounce <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			debounce = timer.C

		case <-debounce:
			debounce = nil
			log.Info("file changed, reloading")
			if err := w.onChange(abs); err != nil {
				log.WithError(err).Warn("reload failed")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
