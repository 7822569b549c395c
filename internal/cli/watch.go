package cli

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into a single reload.
const watchDebounce = 250 * time.Millisecond

// watchFile watches a single file and invokes notify after each change
// settles. Editors typically replace files on save rather than writing
// in place, so the parent directory is watched and events are filtered
// by name. The watcher runs until the returned stop function is called;
// stop is idempotent.
func watchFile(path string, logger *log.Logger, notify func()) (stop func(), err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		// The timer starts drained; the first matching event arms it.
		timer := time.NewTimer(watchDebounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(watchDebounce)
			case <-timer.C:
				notify()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error", "path", path, "err", err)
			}
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}
	return stop, nil
}
