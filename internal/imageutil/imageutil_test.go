package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	frame, err := Decode(encodePNG(t, 32, 20))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if frame.Width != 32 || frame.Height != 20 {
		t.Errorf("Decoded %dx%d, want 32x20", frame.Width, frame.Height)
	}
	if frame.Format != "png" {
		t.Errorf("Format=%q, want png", frame.Format)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Error("Decode accepted garbage bytes")
	}
	if _, err := Decode(nil); err == nil {
		t.Error("Decode accepted empty input")
	}
}

func TestFitToCellsDownscale(t *testing.T) {
	frame, err := Decode(encodePNG(t, 200, 100))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	out := FitToCells(frame, 40, 20, false)
	b := out.Bounds()
	if b.Dx() > 40 || b.Dy() > 40 {
		t.Errorf("Fit produced %dx%d, want within 40x40 pixels", b.Dx(), b.Dy())
	}
	// Aspect preserved: 2:1 input.
	if b.Dy()*2 != b.Dx() {
		t.Errorf("Aspect not preserved: %dx%d", b.Dx(), b.Dy())
	}
}

func TestFitToCellsNoUpscaleKeepsNativeSize(t *testing.T) {
	frame, err := Decode(encodePNG(t, 10, 6))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	out := FitToCells(frame, 80, 24, false)
	b := out.Bounds()
	if b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("Got %dx%d, want native 10x6", b.Dx(), b.Dy())
	}
}

func TestFitToCellsUpscale(t *testing.T) {
	frame, err := Decode(encodePNG(t, 10, 6))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	out := FitToCells(frame, 40, 20, true)
	b := out.Bounds()
	if b.Dx() <= 10 || b.Dx() > 40 || b.Dy() > 40 {
		t.Errorf("Upscale produced %dx%d", b.Dx(), b.Dy())
	}
}

func TestFitToCellsDegenerateGrid(t *testing.T) {
	frame, err := Decode(encodePNG(t, 10, 10))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	out := FitToCells(frame, 0, 0, false)
	if out.Bounds().Dx() < 1 || out.Bounds().Dy() < 1 {
		t.Error("Degenerate grid produced an empty image")
	}
}
