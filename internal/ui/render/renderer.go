// Package render draws the viewer UI on a tcell screen.
//
// Frames are painted two pixels per cell with the upper-half-block rune,
// foreground carrying the top pixel and background the bottom one.
package render

import (
	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/kk-code-lab/seqview/internal/frame"
	"github.com/kk-code-lab/seqview/internal/imageutil"
	statepkg "github.com/kk-code-lab/seqview/internal/state"
	"github.com/kk-code-lab/seqview/internal/textutil"
)

const halfBlock = '▀'

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(st *statepkg.ViewState, cache *frame.Cache) {
	r.screen.Clear()

	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		r.screen.Show()
		return
	}

	r.drawHeader(st, w)
	if h > 2 {
		r.drawFrameArea(st, cache, w, h)
	}
	r.drawStatusLine(st, w, h)

	r.screen.Show()
}

// drawHeader renders the top bar with title and the current frame address
func (r *Renderer) drawHeader(st *statepkg.ViewState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)

	endX := r.drawTextLine(0, 0, w, "seqview", headerStyle)
	if endX < w {
		r.screen.SetContent(endX, 0, ' ', nil, headerStyle)
		endX++
	}
	if endX < w {
		addr := textutil.SanitizeTerminalText(st.Addr.Display(st.Addr.Index))
		endX = r.drawTextLine(endX, 0, w-endX, addr, headerStyle.Bold(true))
	}
	for x := endX; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, headerStyle)
	}
}

// drawFrameArea paints the current frame, or a centered placeholder while
// the slot is not ready.
func (r *Renderer) drawFrameArea(st *statepkg.ViewState, cache *frame.Cache, w, h int) {
	rows := h - 2 // header and status line
	slot, ok := st.CurrentSlot(cache)

	if ok && slot.State == frame.SlotReady && slot.Image != nil {
		r.drawFrame(slot.Image, st.Fit, w, rows)
		return
	}

	text := textutil.SanitizeTerminalText(placeholderText(slot, ok, st.Addr.FileNameFor(st.Addr.Index)))
	style := tcell.StyleDefault.Foreground(r.theme.PendingFg)
	if ok && (slot.State == frame.SlotMissing || slot.State == frame.SlotFailed) {
		style = tcell.StyleDefault.Foreground(r.theme.ErrorFg)
	}
	r.drawCenteredText(text, w, rows, style)
}

func (r *Renderer) drawFrame(img *imageutil.Frame, fit bool, w, rows int) {
	pix := imageutil.FitToCells(img, w, rows, fit)
	bounds := pix.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	cellRows := (imgH + 1) / 2

	offX := (w - imgW) / 2
	offY := 1 + (rows-cellRows)/2
	if offX < 0 {
		offX = 0
	}
	if offY < 1 {
		offY = 1
	}

	bg := tcell.StyleDefault.Background(r.theme.Background)
	for cy := 0; cy < cellRows; cy++ {
		for cx := 0; cx < imgW; cx++ {
			top := pix.NRGBAAt(bounds.Min.X+cx, bounds.Min.Y+cy*2)
			style := bg.Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B)))
			if cy*2+1 < imgH {
				bot := pix.NRGBAAt(bounds.Min.X+cx, bounds.Min.Y+cy*2+1)
				style = style.Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			}
			r.screen.SetContent(offX+cx, offY+cy, halfBlock, nil, style)
		}
	}
}

func (r *Renderer) drawCenteredText(text string, w, rows int, style tcell.Style) {
	width := measureTextWidth(text)
	x := (w - width) / 2
	if x < 0 {
		x = 0
	}
	y := 1 + rows/2
	r.drawTextLine(x, y, w-x, text, style)
}

// drawStatusLine renders the status line at the bottom
func (r *Renderer) drawStatusLine(st *statepkg.ViewState, w, h int) {
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	y := h - 1

	endX := r.drawTextLine(0, y, w, textutil.SanitizeTerminalText(st.Status), style)
	for x := endX; x < w; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}

// drawTextLine draws text at (x, y) clipped to maxWidth columns and
// returns the x position after the last cell written.
func (r *Renderer) drawTextLine(x, y, maxWidth int, text string, style tcell.Style) int {
	limit := x + maxWidth
	for _, ru := range text {
		rw := runewidth.RuneWidth(ru)
		if rw == 0 {
			continue
		}
		if x+rw > limit {
			break
		}
		r.screen.SetContent(x, y, ru, nil, style)
		x += rw
	}
	return x
}

func measureTextWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += runewidth.RuneWidth(ru)
	}
	return width
}
