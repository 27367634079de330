// Package webhook posts images to a Discord webhook as multipart form data.
//
// It enforces Discord's combined-payload ceiling locally before issuing any
// request, so an oversized batch never reaches the network.
package webhook

import "context"

// Item is one file to include in a batch upload.
type Item struct {
	// Path is the on-disk location of the (possibly compressed) file.
	Path string

	// Filename is the display name used in the multipart field.
	Filename string
}

// Sender transmits image files to a webhook endpoint.
// Implementations report failure as an error; a nil return means the
// endpoint accepted the upload.
type Sender interface {
	// SendOne uploads a single image, optionally with a sidecar JSON file
	// attached to the same request.
	SendOne(ctx context.Context, path, filename, sidecarPath string) error

	// SendMany uploads all items in one request, one field per item.
	// Returns ErrPayloadTooLarge without touching the network if the
	// combined content would exceed the endpoint's payload ceiling.
	SendMany(ctx context.Context, items []Item) error
}
