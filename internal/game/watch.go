package game

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches config files and triggers a callback once per
// debounced burst of changes.
// Directories are watched rather than files so editors that replace the
// file (write to temp + rename) are still seen.
type FileWatcher struct {
	Paths    []string
	Debounce time.Duration
	onChange func([]string) // sorted paths changed during the burst

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// NewFileWatcher creates a watcher for given paths. Debounce <= 0 => 250ms.
func NewFileWatcher(paths []string, debounce time.Duration, onChange func([]string)) *FileWatcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	clean := make([]string, len(paths))
	for i, p := range paths {
		clean[i] = filepath.Clean(p)
	}
	return &FileWatcher{
		Paths:    clean,
		Debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins watching in a goroutine. It returns once the directories are registered.
func (w *FileWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for _, p := range w.Paths {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			// a season directory may not exist yet
			slog.Warn("config watch skipped", "dir", d, "err", err)
		}
	}
	w.watcher = fw
	go w.run(ctx)
	return nil
}

// Stop terminates the watcher and waits for its goroutine to exit.
func (w *FileWatcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			<-w.doneCh
		}
	})
}

func (w *FileWatcher) watched(name string) bool {
	name = filepath.Clean(name)
	for _, p := range w.Paths {
		if p == name {
			return true
		}
	}
	return false
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.watched(ev.Name) || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			timer.Reset(w.Debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "err", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			if w.onChange != nil {
				w.onChange(changed)
			}
		}
	}
}
