package reportwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher fires onReady once a trigger file in dir stops changing for the
// debounce period. The detection job writes several artifacts in a row; the
// debounce lets it finish before the bundle is pushed.
type Watcher struct {
	dir      string
	triggers map[string]struct{}
	debounce time.Duration
	onReady  func(ctx context.Context)

	mu    sync.Mutex
	timer *time.Timer
}

func New(dir string, debounce time.Duration, onReady func(ctx context.Context), triggers ...string) *Watcher {
	set := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		set[t] = struct{}{}
	}
	return &Watcher{dir: dir, triggers: set, debounce: debounce, onReady: onReady}
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("reportwatch: create %s: %w", w.dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("reportwatch: new watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("reportwatch: watch %s: %w", w.dir, err)
	}
	logrus.Infof("[REPORT_WATCH] watching %s", w.dir)

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, hit := w.triggers[filepath.Base(event.Name)]; !hit {
				continue
			}
			logrus.Debugf("[REPORT_WATCH] %s %s", event.Op, event.Name)
			w.schedule(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("[REPORT_WATCH] watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		logrus.Info("[REPORT_WATCH] report artifacts settled, pushing bundle")
		w.onReady(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
