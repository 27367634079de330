// Package imaging handles on-disk image encoding: PNG persistence for
// generated images and lossy WebP re-encoding for oversized uploads.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
)

// Compress re-encodes the image at path as lossy WebP with the given quality
// (0-100) and returns the derived file's path, "<base>_compressed.webp" next
// to the source. The re-encode strips any embedded textual metadata; callers
// that need it preserved must ship it separately.
func Compress(path string, quality int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img = normalize(img)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	compressedPath := filepath.Join(filepath.Dir(path), base+"_compressed.webp")

	out, err := os.Create(compressedPath)
	if err != nil {
		return "", fmt.Errorf("create compressed file: %w", err)
	}

	if err := webp.Encode(out, img, &webp.Options{Quality: float32(quality)}); err != nil {
		out.Close()
		os.Remove(compressedPath)
		return "", fmt.Errorf("encode webp: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(compressedPath)
		return "", fmt.Errorf("close compressed file: %w", err)
	}

	return compressedPath, nil
}

// normalize reconciles color modes before re-encoding: images carrying
// transparency (alpha channel or a palette with translucent entries) become
// full NRGBA, everything else becomes opaque RGBA.
func normalize(img image.Image) image.Image {
	b := img.Bounds()

	if hasTransparency(img) {
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	}

	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// hasTransparency reports whether the image can contain non-opaque pixels.
func hasTransparency(img image.Image) bool {
	if p, ok := img.(*image.Paletted); ok {
		for _, c := range p.Palette {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return true
			}
		}
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
