package render

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/seqview/internal/frame"
	"github.com/kk-code-lab/seqview/internal/imageutil"
	"github.com/kk-code-lab/seqview/internal/sequence"
	statepkg "github.com/kk-code-lab/seqview/internal/state"
)

type fakeSched struct{}

func (fakeSched) Request(idx uint64) bool { return true }

func (fakeSched) SetWindow(center, min, max uint64, direction int) {}

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func viewState(t *testing.T, idx uint64) *statepkg.ViewState {
	t.Helper()
	pat, err := sequence.Compile("img_###.png")
	if err != nil {
		t.Fatal(err)
	}
	st := statepkg.NewViewState(sequence.Address{Pattern: pat, Dir: sequence.LocalDir{Path: "/data"}, Index: idx})
	st.Status = "ready"
	return st
}

func screenRow(screen tcell.SimulationScreen, y, w int) string {
	var sb strings.Builder
	for x := 0; x < w; x++ {
		ru, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(ru)
	}
	return sb.String()
}

func TestPlaceholderText(t *testing.T) {
	tests := []struct {
		name     string
		slot     frame.Slot
		resident bool
		want     string
	}{
		{"absent slot", frame.Slot{}, false, "Loading img_005.png…"},
		{"pending", frame.Slot{State: frame.SlotPending}, true, "Loading img_005.png…"},
		{"missing", frame.Slot{State: frame.SlotMissing}, true, "No file: img_005.png"},
		{"failed without reason", frame.Slot{State: frame.SlotFailed}, true, "Failed to load img_005.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeholderText(tt.slot, tt.resident, "img_005.png")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderHeaderAndStatus(t *testing.T) {
	screen := simScreen(t, 40, 6)
	r := NewRenderer(screen)
	st := viewState(t, 5)
	cache := frame.NewCache(1, fakeSched{}, nil)

	r.Render(st, cache)

	header := screenRow(screen, 0, 40)
	if !strings.HasPrefix(header, "seqview ") {
		t.Errorf("header=%q, want seqview title first", header)
	}
	if !strings.Contains(header, "img_005.png") {
		t.Errorf("header=%q, want current file name", header)
	}
	status := screenRow(screen, 5, 40)
	if !strings.HasPrefix(status, "ready") {
		t.Errorf("status=%q, want reducer status text", status)
	}
}

func TestRenderReadyFramePaintsHalfBlocks(t *testing.T) {
	screen := simScreen(t, 10, 6)
	r := NewRenderer(screen)
	st := viewState(t, 5)
	st.Fit = false

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})

	cache := frame.NewCache(1, fakeSched{}, nil)
	cache.SetCenter(5)
	cache.Apply(frame.Result{Index: 5, Frame: &imageutil.Frame{Img: img, Width: 2, Height: 2}})

	r.Render(st, cache)

	// 2x2 image occupies one cell row, centered in the 4-row frame area.
	ru, _, style, _ := screen.GetContent(4, 2)
	if ru != halfBlock {
		t.Fatalf("rune=%q, want upper half block", ru)
	}
	fg, bg, _ := style.Decompose()
	if fg.Hex() != 0xFF0000 {
		t.Errorf("fg=%06x, want FF0000 (top pixel)", fg.Hex())
	}
	if bg.Hex() != 0x0000FF {
		t.Errorf("bg=%06x, want 0000FF (bottom pixel)", bg.Hex())
	}
}

func TestRenderPendingShowsPlaceholder(t *testing.T) {
	screen := simScreen(t, 40, 6)
	r := NewRenderer(screen)
	st := viewState(t, 5)

	cache := frame.NewCache(1, fakeSched{}, nil)
	cache.SetCenter(5) // slot pending, nothing delivered

	r.Render(st, cache)

	found := false
	for y := 1; y < 5; y++ {
		if strings.Contains(screenRow(screen, y, 40), "Loading img_005.png") {
			found = true
		}
	}
	if !found {
		t.Error("pending placeholder not drawn")
	}
}

func TestMeasureTextWidth(t *testing.T) {
	if got := measureTextWidth("abc"); got != 3 {
		t.Fatalf("expected ASCII width 3, got %d", got)
	}
	if got := measureTextWidth("你好"); got != 4 {
		t.Fatalf("expected wide rune width 4, got %d", got)
	}
}
