package config

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

// settle coalesces the burst of events a single save produces.
const settle = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	onChange func(*Config)
	log      *zap.Logger
	done     chan struct{}
	once     sync.Once
}

// Watch calls onChange with the reloaded config after every change to path.
// The directory is watched so editors that replace the file are seen too.
// It stops when ctx is cancelled or Close is called.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		fsw:      fsw,
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.closeFS()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			fire = time.After(settle)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			c, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path))
			w.onChange(c)
		}
	}
}

func (w *Watcher) closeFS() {
	w.once.Do(func() {
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("closing config watcher", zap.Error(err))
		}
	})
}

// Close stops the watcher and waits for it to exit.
func (w *Watcher) Close() {
	w.closeFS()
	<-w.done
}
