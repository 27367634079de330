// Package watch feeds the delivery engine from a directory: image files
// created there are delivered as they settle on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

// DefaultSettleDelay is how long a file must stay quiet after its last write
// event before it is considered complete and delivered.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher monitors a directory and delivers image files created in it.
type Watcher struct {
	dir         string
	deliverer   *delivery.Deliverer
	batch       bool
	settleDelay time.Duration
	logger      log.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option configures optional behavior of a Watcher.
type Option func(*Watcher)

// WithLogger sets a custom logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithSettleDelay overrides the quiet period before a file is delivered.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.settleDelay = d
	}
}

// New creates a Watcher over dir. With batch set, files are queued and
// flushed at the delivery engine's batch threshold; otherwise each file is
// sent immediately.
func New(dir string, deliverer *delivery.Deliverer, batch bool, opts ...Option) *Watcher {
	w := &Watcher{
		dir:         dir,
		deliverer:   deliverer,
		batch:       batch,
		settleDelay: DefaultSettleDelay,
		logger:      log.NewNoopLogger(),
		timers:      make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until the context is cancelled. On shutdown any
// queued items are flushed before returning.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory", log.String("dir", w.dir), log.Bool("batch", w.batch))

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			if w.batch {
				w.deliverer.Flush(context.Background())
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isImage(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.scheduleDeliver(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", log.Err(err))
		}
	}
}

// scheduleDeliver (re)arms the settle timer for the file; delivery happens
// once the file has been quiet for the settle delay.
func (w *Watcher) scheduleDeliver(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, path)
	})
}

func (w *Watcher) deliver(ctx context.Context, path string) {
	item := delivery.Item{
		Path:     path,
		Filename: filepath.Base(path),
	}
	if w.batch {
		w.deliverer.Enqueue(ctx, item)
	} else {
		w.deliverer.Deliver(ctx, item)
	}
	w.logger.Debug("file routed",
		log.String("file", item.Filename),
		log.String("status", w.deliverer.LastStatus()))
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}
