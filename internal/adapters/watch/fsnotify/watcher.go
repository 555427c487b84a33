package fsnotify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 2 * time.Second

// Watch reports changes under dir on the returned channel, coalescing bursts
// within debounce into a single wake. The channel never blocks the watcher;
// a pending wake absorbs later ones. Watching stops when ctx ends.
func Watch(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	wake := make(chan struct{}, 1)
	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					fire = timer.C
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("task data watcher error", "error", err)
			case <-fire:
				timer = nil
				fire = nil
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()

	return wake, nil
}
