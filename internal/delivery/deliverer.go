// Package delivery implements the routing policy between persisted images
// and the webhook endpoint: immediate vs. batched sends, size-aware
// compression, and batch-to-individual fallback on failure.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/imaging"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/webhook"
	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

// Status values reported by LastStatus. Formatted variants ("Batch sent (n)",
// "Partial (k/n)") are produced by the flush path.
const (
	StatusReady      = "Ready"
	StatusSending    = "Sending..."
	StatusSent       = "Sent"
	StatusError      = "Error"
	StatusBatchError = "Batch error"
)

// Item is one persisted image awaiting delivery. Items handed to the queue
// are owned by it until flushed.
type Item struct {
	// Path is the persisted image on disk. Never deleted by this package.
	Path string

	// Filename is the display name used in upload fields.
	Filename string

	// Workflow is an optional metadata blob shipped as a sidecar JSON file
	// when the image is compressed (compression strips embedded metadata).
	Workflow json.RawMessage
}

// CompressFunc derives a lossy copy of the file at path and returns the
// derived file's path.
type CompressFunc func(path string, quality int) (string, error)

// Deliverer owns the delivery queue and last-operation status. All sends are
// sequential and blocking; the mutex only protects queue and status access
// so the engine stays safe under hosts that stop serializing invocations.
type Deliverer struct {
	cfg      Config
	sender   webhook.Sender
	logger   log.Logger
	compress CompressFunc

	mu     sync.Mutex
	queue  []Item
	status string
}

// Option configures optional behavior of a Deliverer.
type Option func(*Deliverer)

// WithLogger sets a custom logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Deliverer) {
		d.logger = logger
	}
}

// WithCompressFunc overrides the compression implementation.
// Defaults to imaging.Compress.
func WithCompressFunc(fn CompressFunc) Option {
	return func(d *Deliverer) {
		d.compress = fn
	}
}

// New creates a Deliverer for the given configuration and transport.
func New(cfg Config, sender webhook.Sender, opts ...Option) (*Deliverer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Deliverer{
		cfg:      cfg,
		sender:   sender,
		logger:   log.NewNoopLogger(),
		compress: imaging.Compress,
		status:   StatusReady,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// LastStatus returns a one-line summary of the most recent delivery outcome.
func (d *Deliverer) LastStatus() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// QueueLen returns the number of items waiting for a flush.
func (d *Deliverer) QueueLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Deliver sends a single item immediately, applying the size policy first.
// Delivery failures are reflected in LastStatus, never returned: a failed
// send must not abort the host invocation.
func (d *Deliverer) Deliver(ctx context.Context, item Item) {
	if !d.cfg.Enabled() {
		return
	}

	d.setStatus(StatusSending)
	if d.sendItem(ctx, item) {
		d.setStatus(StatusSent)
		d.logger.Info("image sent", log.String("file", item.Filename))
	} else {
		d.setStatus(StatusError)
		d.logger.Error("image send failed", log.String("file", item.Filename))
	}
}

// Enqueue appends the item to the batch queue and flushes automatically once
// the queue reaches the configured batch size.
func (d *Deliverer) Enqueue(ctx context.Context, item Item) {
	if !d.cfg.Enabled() {
		return
	}

	d.mu.Lock()
	d.queue = append(d.queue, item)
	full := len(d.queue) >= d.cfg.BatchSize
	d.mu.Unlock()

	if full {
		d.Flush(ctx)
	}
}

// Flush drains the queue with one batch upload. On batch failure the queued
// items are re-sent individually when fallback is enabled, otherwise they
// are dropped. The queue is empty when Flush returns, whatever the outcome.
func (d *Deliverer) Flush(ctx context.Context) {
	if !d.cfg.Enabled() {
		return
	}

	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	if len(queue) == 0 {
		return
	}

	d.setStatus(fmt.Sprintf("Sending batch (%d)...", len(queue)))

	items := make([]webhook.Item, len(queue))
	for i, it := range queue {
		items[i] = webhook.Item{Path: it.Path, Filename: it.Filename}
	}

	err := d.sender.SendMany(ctx, items)
	if err == nil {
		d.setStatus(fmt.Sprintf("Batch sent (%d)", len(queue)))
		d.logger.Info("batch sent", log.Int("images", len(queue)))
		return
	}
	d.logger.Warn("batch send failed", log.Int("images", len(queue)), log.Err(err))

	if !d.cfg.EnableFallback {
		// Failed items are dropped, not retried.
		d.setStatus(StatusBatchError)
		return
	}

	d.setStatus("Sending individually...")
	sent := 0
	for _, it := range queue {
		if d.sendItem(ctx, it) {
			sent++
		}
	}

	if sent == len(queue) {
		d.setStatus(fmt.Sprintf("Sent individually (%d/%d)", sent, len(queue)))
	} else {
		d.setStatus(fmt.Sprintf("Partial (%d/%d)", sent, len(queue)))
	}
	d.logger.Info("fallback completed",
		log.Int("sent", sent),
		log.Int("images", len(queue)))
}

// sendItem runs the size policy and one transport attempt for a single item.
// Derived files are removed on every exit path.
func (d *Deliverer) sendItem(ctx context.Context, item Item) bool {
	a := d.prepareAttempt(item)
	defer cleanupAttempt(a.path, item.Path, a.sidecarPath)

	if err := d.sender.SendOne(ctx, a.path, item.Filename, a.sidecarPath); err != nil {
		d.logger.Warn("send failed", log.String("file", item.Filename), log.Err(err))
		return false
	}
	return true
}

func (d *Deliverer) setStatus(s string) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}
