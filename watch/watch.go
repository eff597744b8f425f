// Package watch surfaces external removal or renaming of the currently
// loaded movie file, a failure mode the original QuickTime-backed
// implementation never had to consider but a long-lived process reading
// a file off possibly-removable media does.
package watch

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"

	"github.com/bangnoise/gohap/errs"
)

// Watcher watches a single loaded movie path for removal or rename,
// reporting either as a FormatError through the supplied callback.
type Watcher struct {
	watcher *fsnotify.Watcher
	closed  chan struct{}
	onError func(error)
}

// Watch starts watching path, invoking onError exactly once if the file
// is removed or renamed out from under the player. onError is called
// from the watcher's own goroutine.
func Watch(path string, onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: NewWatcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: Add(%s): %w", path, err)
	}
	w := &Watcher{watcher: fw, closed: make(chan struct{}), onError: onError}
	go w.loop(path)
	return w, nil
}

// Close stops watching and releases the underlying inotify/kqueue/etc.
// handle.
func (w *Watcher) Close() error {
	close(w.closed)
	return w.watcher.Close()
}

func (w *Watcher) loop(path string) {
	for {
		select {
		case <-w.closed:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onError(errs.New(errs.FormatError, fmt.Sprintf("%s was removed or renamed while loaded", path)))
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: watcher error for %s: %v", path, err)
		}
	}
}
