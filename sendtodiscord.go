// Package sendtodiscord persists generated images and relays them to a
// Discord webhook, with batching, size-aware WebP compression, and
// batch-to-individual fallback when an upload fails.
//
// Example usage:
//
//	cfg := sendtodiscord.DefaultConfig()
//	cfg.WebhookURL = "https://discord.com/api/webhooks/..."
//	n, err := sendtodiscord.New("/tmp/output", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, out, err := n.Process(ctx, images, sendtodiscord.Options{
//	    SendToDiscord: true,
//	    BatchMode:     true,
//	})
package sendtodiscord

import (
	"net/http"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/node"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/webhook"
	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

// Config holds the delivery policy settings.
// Use DefaultConfig() to get a Config with the documented defaults.
type Config = delivery.Config

// Options control one Process invocation.
type Options = node.Options

// Result is one UI-facing entry describing a persisted image.
type Result = node.Result

// Node persists images and routes them to delivery.
type Node = node.Node

// Logger is the structured logging interface accepted by WithLogger.
type Logger = log.Logger

// HTTPClient abstracts HTTP request execution. *http.Client satisfies it.
type HTTPClient = webhook.HTTPClient

// DefaultConfig returns a Config with default values. WebhookURL is left
// empty, which keeps delivery disabled until one is set.
func DefaultConfig() Config {
	return delivery.DefaultConfig()
}

// Option configures optional behavior of New.
type Option func(*options)

type options struct {
	httpClient HTTPClient
	logger     Logger
}

// WithHTTPClient sets a custom HTTP client for webhook requests.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a host-facing node that writes images into outputDir and
// delivers them per cfg. Returns an error if the configuration is invalid.
func New(outputDir string, cfg Config, opts ...Option) (*Node, error) {
	o := options{
		httpClient: &http.Client{},
		logger:     log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	sender := webhook.NewHTTPSender(cfg.WebhookURL, o.httpClient, o.logger)
	deliverer, err := delivery.New(cfg, sender, delivery.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	return node.New(outputDir, deliverer, node.WithLogger(o.logger)), nil
}
