// Package imageutil decodes frame bytes and prepares them for cell-based
// terminal rendering. Decoding always happens on worker goroutines; only
// the fit step runs on the drawing path, against an already decoded frame.
package imageutil

import (
	"bytes"
	"fmt"
	"image"

	// Registered decode formats: the std trio plus the extended set.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

// Frame is a decoded frame ready for rendering.
type Frame struct {
	Img    image.Image
	Format string
	Width  int
	Height int
}

// Decode decodes raw image bytes into a Frame. Errors are per-frame and
// never affect neighboring frames.
func Decode(data []byte) (*Frame, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	return &Frame{
		Img:    img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// FitToCells scales the frame into a cols×rows cell grid, two pixels per
// cell row for half-block rendering, preserving aspect ratio. With upscale
// false small frames keep their native size (no blurry enlargement); with
// upscale true the frame grows to touch the grid from inside.
func FitToCells(f *Frame, cols, rows int, upscale bool) *image.NRGBA {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	maxW, maxH := cols, rows*2

	if f.Width <= maxW && f.Height <= maxH {
		if !upscale {
			return imaging.Clone(f.Img)
		}
		w, h := scaleToFit(f.Width, f.Height, maxW, maxH)
		return imaging.Resize(f.Img, w, h, imaging.Lanczos)
	}
	return imaging.Fit(f.Img, maxW, maxH, imaging.Lanczos)
}

// scaleToFit computes the largest (w,h) with the same aspect ratio that
// fits inside (maxW, maxH).
func scaleToFit(w, h, maxW, maxH int) (int, int) {
	if w < 1 || h < 1 {
		return 1, 1
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
