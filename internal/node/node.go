// Package node is the host-facing surface: it persists generated images to
// the output directory, reports one UI result per input, and hands each
// image to the delivery engine according to the invocation options.
//
// Delivery failures never surface as errors here; the host always gets its
// persisted images back.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/imaging"
	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

const (
	defaultFilenamePrefix = "ComfyUI"
	outputType            = "temp"
	workflowLogName       = "workflow_log.json"
)

// Result is one UI-facing entry describing a persisted image.
type Result struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// Options control one Process invocation.
type Options struct {
	// SendToDiscord enables delivery; persistence happens regardless.
	SendToDiscord bool

	// BatchMode queues images and flushes at the batch threshold and at the
	// end of the invocation, instead of sending each immediately.
	BatchMode bool

	// Workflow is the pipeline's workflow object, shipped as a sidecar with
	// compressed sends and logged to the output directory.
	Workflow json.RawMessage

	// Passthrough, when set, is returned to the host instead of the inputs.
	Passthrough []image.Image
}

// Node persists images and routes them to delivery.
type Node struct {
	outputDir string
	prefix    string
	counter   int
	deliverer *delivery.Deliverer
	logger    log.Logger
}

// Option configures optional behavior of a Node.
type Option func(*Node)

// WithLogger sets a custom logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// New creates a Node writing into outputDir. The filename prefix carries a
// random suffix so concurrent pipelines do not collide on names.
func New(outputDir string, deliverer *delivery.Deliverer, opts ...Option) *Node {
	n := &Node{
		outputDir: outputDir,
		prefix:    defaultFilenamePrefix + "_temp_" + randSuffix(5),
		counter:   1,
		deliverer: deliverer,
		logger:    log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Process persists every input image as PNG and routes each to delivery per
// the options. It returns one Result per input regardless of delivery
// outcome, plus the images to hand back to the host. An error is returned
// only when persistence itself fails.
func (n *Node) Process(ctx context.Context, images []image.Image, opts Options) ([]Result, []image.Image, error) {
	if err := os.MkdirAll(n.outputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}

	results := make([]Result, 0, len(images))
	for _, img := range images {
		filename := fmt.Sprintf("%s_%05d_.png", n.prefix, n.counter)
		path := filepath.Join(n.outputDir, filename)
		if err := imaging.SavePNG(img, path); err != nil {
			return nil, nil, fmt.Errorf("persist %s: %w", filename, err)
		}
		n.counter++

		results = append(results, Result{
			Filename:  filename,
			Subfolder: "",
			Type:      outputType,
		})

		if opts.SendToDiscord {
			item := delivery.Item{
				Path:     path,
				Filename: filename,
				Workflow: opts.Workflow,
			}
			if opts.BatchMode {
				n.deliverer.Enqueue(ctx, item)
			} else {
				n.deliverer.Deliver(ctx, item)
			}
		}
	}

	// Whatever did not reach the batch threshold goes out now.
	if opts.SendToDiscord && opts.BatchMode {
		n.deliverer.Flush(ctx)
	}

	if len(opts.Workflow) > 0 {
		n.logWorkflow(opts.Workflow)
	}

	out := opts.Passthrough
	if out == nil {
		out = images
	}
	return results, out, nil
}

// DeliveryStatus returns the delivery engine's last-operation summary.
func (n *Node) DeliveryStatus() string {
	return n.deliverer.LastStatus()
}

// logWorkflow mirrors the workflow object into the output directory,
// best-effort.
func (n *Node) logWorkflow(workflow json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, workflow, "", "  "); err != nil {
		n.logger.Warn("workflow log skipped", log.Err(err))
		return
	}
	path := filepath.Join(n.outputDir, workflowLogName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		n.logger.Warn("workflow log write failed", log.Err(err))
		return
	}
	n.logger.Debug("workflow logged", log.String("path", path))
}

func randSuffix(length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
