package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/webhook"
)

type fakeSender struct {
	mu      sync.Mutex
	one     []string
	batches [][]webhook.Item
}

func (f *fakeSender) SendOne(ctx context.Context, path, filename, sidecarPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.one = append(f.one, filename)
	return nil
}

func (f *fakeSender) SendMany(ctx context.Context, items []webhook.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, items)
	return nil
}

func (f *fakeSender) oneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.one)
}

func (f *fakeSender) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func newWatchDeliverer(t *testing.T, sender webhook.Sender, batchSize int) *delivery.Deliverer {
	t.Helper()
	cfg := delivery.DefaultConfig()
	cfg.WebhookURL = "https://example.com/webhook"
	cfg.BatchSize = batchSize
	d, err := delivery.New(cfg, sender)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRun_DeliversCreatedImage(t *testing.T) {
	dir := t.TempDir()
	sender := &fakeSender{}
	d := newWatchDeliverer(t, sender, 5)

	w := New(dir, d, false, WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "render.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return sender.oneCount() == 1 }) {
		t.Errorf("individual sends = %d, want 1", sender.oneCount())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestRun_IgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	sender := &fakeSender{}
	d := newWatchDeliverer(t, sender, 5)

	w := New(dir, d, false, WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := sender.oneCount(); got != 0 {
		t.Errorf("individual sends = %d, want 0", got)
	}

	cancel()
	<-done
}

func TestRun_BatchFlushesOnShutdown(t *testing.T) {
	dir := t.TempDir()
	sender := &fakeSender{}
	// Large threshold so nothing flushes until shutdown.
	d := newWatchDeliverer(t, sender, 10)

	w := New(dir, d, true, WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if !waitFor(t, 3*time.Second, func() bool { return d.QueueLen() == 2 }) {
		t.Fatalf("QueueLen = %d, want 2", d.QueueLen())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}

	if got := sender.batchCount(); got != 1 {
		t.Fatalf("batch sends = %d, want 1", got)
	}
	if got := d.QueueLen(); got != 0 {
		t.Errorf("QueueLen after shutdown = %d, want 0", got)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	sender := &fakeSender{}
	d := newWatchDeliverer(t, sender, 5)

	w := New(filepath.Join(t.TempDir(), "absent"), d, false)
	if err := w.Run(context.Background()); err == nil {
		t.Error("Run accepted a missing directory")
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.png", true},
		{"a.PNG", true},
		{"a.jpg", true},
		{"a.jpeg", true},
		{"a.webp", true},
		{"a.txt", false},
		{"a.png.tmp", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := isImage(tt.path); got != tt.want {
			t.Errorf("isImage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
