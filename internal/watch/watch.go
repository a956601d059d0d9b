// Package watch re-runs a workflow script whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher observes a script file and invokes a callback after edits settle.
// The parent directory is watched rather than the file itself so that
// editors which write via rename (temp file + move) are still caught.
// Callbacks never overlap: an edit landing while the callback is still
// running waits for it to finish before triggering the next invocation.
type Watcher struct {
	scriptPath string
	debounce   time.Duration
	log        *zap.Logger
	onChange   func()

	mu    sync.Mutex
	timer *time.Timer

	// runMu serializes onChange invocations across timer goroutines.
	runMu sync.Mutex
}

func New(scriptPath string, debounce time.Duration, log *zap.Logger, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		scriptPath: scriptPath,
		debounce:   debounce,
		log:        log,
		onChange:   onChange,
	}
}

// Run blocks until ctx is cancelled, firing onChange after each burst of
// writes to the script file.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.scriptPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.scriptPath, err)
	}
	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("watching script", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !sameFile(event.Name, abs) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.log.Debug("script changed", zap.String("op", event.Op.String()))
				w.schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// schedule resets the debounce timer so rapid successive writes coalesce
// into a single callback.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.runMu.Lock()
		defer w.runMu.Unlock()
		w.onChange()
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func sameFile(eventName, target string) bool {
	abs, err := filepath.Abs(eventName)
	if err != nil {
		return false
	}
	return abs == target
}
