// ABOUTME: File system watcher for the monitored directory
// ABOUTME: Debounces fsnotify events and hands settled files to the importer
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harper/vox/internal/media"
)

// settleDelay is how long a file must be quiet before import, so we
// don't grab files mid-copy.
const settleDelay = 500 * time.Millisecond

// Watcher watches the monitored directory and imports new audio files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	importer *Importer
	logger   *slog.Logger
	dir      string
}

func NewWatcher(importer *Importer, dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create monitored directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{watcher: w, importer: importer, logger: logger, dir: dir}, nil
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debounce := make(map[string]*time.Timer)
	var debounceMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			debounceMu.Lock()
			for _, timer := range debounce {
				timer.Stop()
			}
			debounceMu.Unlock()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !media.SupportedExtension(event.Name) {
				continue
			}

			// Debounce: wait for writes to settle before importing
			debounceMu.Lock()
			if timer, exists := debounce[event.Name]; exists {
				timer.Stop()
			}
			name := event.Name
			debounce[name] = time.AfterFunc(settleDelay, func() {
				debounceMu.Lock()
				delete(debounce, name)
				debounceMu.Unlock()

				if _, err := os.Stat(name); err != nil {
					return
				}
				if _, err := w.importer.ImportFile(ctx, name); err != nil {
					w.logger.Error("import failed", "file", name, "error", err)
				}
			})
			debounceMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}
}
