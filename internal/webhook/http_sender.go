package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

// MaxBatchPayloadBytes is the endpoint's hard limit on the combined file
// content of one request. It is an external constraint, not configurable.
const MaxBatchPayloadBytes = 25 << 20

const (
	singleSendTimeout = 30 * time.Second
	// Batch uploads carry more data, so they get a longer allowance.
	batchSendTimeout = 60 * time.Second
)

// ErrPayloadTooLarge is returned by SendMany when the combined batch content
// would exceed MaxBatchPayloadBytes. No request is issued in that case.
var ErrPayloadTooLarge = errors.New("combined payload exceeds endpoint limit")

// HTTPSender implements Sender using HTTP multipart form upload.
type HTTPSender struct {
	url    string
	client HTTPClient
	logger log.Logger
}

// NewHTTPSender creates a sender posting to the given webhook URL.
func NewHTTPSender(url string, client HTTPClient, logger log.Logger) *HTTPSender {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPSender{
		url:    url,
		client: client,
		logger: logger,
	}
}

// SendOne uploads a single image under the "file" field and, when
// sidecarPath is non-empty, the sidecar JSON under "file1".
func (s *HTTPSender) SendOne(ctx context.Context, path, filename, sidecarPath string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if err := writeFilePart(writer, "file", filename, MimeTypeFor(path), data); err != nil {
		return err
	}

	if sidecarPath != "" {
		sidecar, err := os.ReadFile(sidecarPath)
		if err != nil {
			return fmt.Errorf("read sidecar: %w", err)
		}
		if err := writeFilePart(writer, "file1", filepath.Base(sidecarPath), "application/json", sidecar); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	return s.post(ctx, &body, writer.FormDataContentType(), singleSendTimeout)
}

// SendMany uploads all items in one request, one "fileN" field per item.
// The combined content size is tracked during field construction; crossing
// MaxBatchPayloadBytes aborts with ErrPayloadTooLarge before any network call.
func (s *HTTPSender) SendMany(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	var total int64
	for i, item := range items {
		data, err := os.ReadFile(item.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", item.Filename, err)
		}

		total += int64(len(data))
		if total > MaxBatchPayloadBytes {
			s.logger.Warn("batch exceeds payload limit",
				log.Int64("total_bytes", total),
				log.Int("items", len(items)))
			return ErrPayloadTooLarge
		}

		field := fmt.Sprintf("file%d", i)
		if err := writeFilePart(writer, field, item.Filename, MimeTypeFor(item.Path), data); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	return s.post(ctx, &body, writer.FormDataContentType(), batchSendTimeout)
}

// post issues the request with a bounded timeout and requires HTTP 200.
func (s *HTTPSender) post(ctx context.Context, body io.Reader, contentType string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// writeFilePart adds a file field with an explicit content type.
func writeFilePart(writer *multipart.Writer, field, filename, mimeType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s field: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s field: %w", field, err)
	}
	return nil
}

// MimeTypeFor maps a file extension to the MIME type used in upload fields.
// Unknown extensions are treated as PNG, the node's native output format.
func MimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
