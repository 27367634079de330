package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

// attempt is the ephemeral outcome of the size policy for one send: the file
// to upload and any derived sidecar created for this attempt.
type attempt struct {
	path        string
	sidecarPath string
}

// prepareAttempt applies the per-file size policy: compress when enabled and
// the file exceeds the configured threshold, and persist the workflow blob
// as a sidecar so it survives the metadata-stripping re-encode. Compression
// failure degrades to the uncompressed original.
func (d *Deliverer) prepareAttempt(item Item) attempt {
	a := attempt{path: item.Path}

	if !d.cfg.EnableCompression {
		return a
	}

	size, err := fileSizeMB(item.Path)
	if err != nil {
		d.logger.Warn("size check failed", log.String("file", item.Filename), log.Err(err))
		return a
	}
	if size <= d.cfg.MaxFileSizeMB {
		return a
	}

	compressed, err := d.compress(item.Path, d.cfg.CompressionQuality)
	if err != nil {
		d.logger.Warn("compression failed, sending original",
			log.String("file", item.Filename),
			log.Err(err))
		return a
	}
	a.path = compressed

	csize, err := fileSizeMB(compressed)
	if err == nil {
		d.logger.Info("image compressed",
			log.String("file", item.Filename),
			log.Float64("from_mb", size),
			log.Float64("to_mb", csize))
	}

	if len(item.Workflow) > 0 {
		sidecar, err := writeSidecar(compressed, item.Filename, item.Workflow)
		if err != nil {
			d.logger.Warn("sidecar write failed", log.String("file", item.Filename), log.Err(err))
		} else {
			a.sidecarPath = sidecar
		}
	}

	return a
}

// writeSidecar persists the workflow blob as pretty-printed JSON next to the
// derived file, named "<base>_workflow.json" after the display filename.
func writeSidecar(nextTo, filename string, workflow json.RawMessage) (string, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	path := filepath.Join(filepath.Dir(nextTo), base+"_workflow.json")

	var buf bytes.Buffer
	if err := json.Indent(&buf, workflow, "", "  "); err != nil {
		return "", fmt.Errorf("format workflow: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write workflow: %w", err)
	}
	return path, nil
}

func fileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / (1 << 20), nil
}
