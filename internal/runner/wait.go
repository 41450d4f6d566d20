package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/coderun/internal/lang"
)

// settleDelay is how long the directory must be quiet before a new candidate
// is read, so a file still being written is not picked up half-empty.
const settleDelay = 200 * time.Millisecond

// pollInterval is the rescan period when fsnotify is unavailable, and a
// safety net while watching.
const pollInterval = time.Second

// waitable reports whether err may resolve once the caller populates the directory.
func waitable(err error) bool {
	return errors.Is(err, ErrDirectoryNotFound) || errors.Is(err, ErrNoSourceFile)
}

// LocateWait is Locate that keeps retrying for up to wait while the directory
// is missing or holds no candidate. wait <= 0 behaves exactly like Locate.
func LocateWait(ctx context.Context, dir string, l lang.Language, wait time.Duration) (string, error) {
	path, err := Locate(dir, l)
	if err == nil || wait <= 0 || !waitable(err) {
		return path, err
	}

	slog.Debug("waiting for candidate", "dir", dir, "extension", l.Extension, "wait", wait)

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		slog.Debug("fsnotify unavailable, polling", "error", werr)
		return pollLocate(ctx, dir, l, err)
	}
	defer func() { _ = watcher.Close() }()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	watched := ""
	pending := false
	for {
		// watch the directory once it exists, its parent until then
		target := dir
		if info, serr := os.Stat(dir); serr != nil || !info.IsDir() {
			target = filepath.Dir(dir)
		}
		if target != watched {
			if watched != "" {
				_ = watcher.Remove(watched)
			}
			if aerr := watcher.Add(target); aerr != nil {
				slog.Debug("cannot watch, polling", "path", target, "error", aerr)
				return pollLocate(ctx, dir, l, err)
			}
			watched = target
			pending = true
			settle.Reset(settleDelay)
		}

		select {
		case <-ctx.Done():
			return "", err
		case ev, ok := <-watcher.Events:
			if !ok {
				return pollLocate(ctx, dir, l, err)
			}
			slog.Debug("directory event", "event", ev.String())
			pending = true
			settle.Reset(settleDelay)
			continue
		case werr, ok := <-watcher.Errors:
			if !ok {
				return pollLocate(ctx, dir, l, err)
			}
			slog.Debug("watch error", "error", werr)
			continue
		case <-settle.C:
			pending = false
		case <-ticker.C:
			if pending {
				continue
			}
		}

		path, err = Locate(dir, l)
		if err == nil || !waitable(err) {
			return path, err
		}
	}
}

func pollLocate(ctx context.Context, dir string, l lang.Language, lastErr error) (string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", lastErr
		case <-ticker.C:
		}
		path, err := Locate(dir, l)
		if err == nil || !waitable(err) {
			return path, err
		}
		lastErr = err
	}
}
