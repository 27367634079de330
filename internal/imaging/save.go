package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// pngEncoder favors speed over ratio; generated previews are written once
// and often discarded.
var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// SavePNG writes the image to path as PNG.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	if err := pngEncoder.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close image file: %w", err)
	}
	return nil
}
