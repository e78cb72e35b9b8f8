package gifloop

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch requests a rescan whenever an image appears in or disappears from
// dir, which should be the same directory on the host filesystem that the
// Player is reading. It blocks until ctx is cancelled.
func (p *Player) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not initialize filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("could not watch \"%s\": %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if shouldRescan(event.Op) && strings.EqualFold(filepath.Ext(event.Name), p.cfg.Extension) {
				p.logger.Printf("Detected change to \"%s\", rescanning\n", event.Name)
				p.RequestRescan()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			p.logger.Printf("Filesystem watcher returned an error: %s\n", err)
		}
	}
}

func shouldRescan(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
